package handlers

import (
	"encoding/json"
	"net/http"

	"kreator/internal/domain"
)

type loginRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated  bool   `json:"authenticated"`
	Role           string `json:"role"`
	RemainingQuota int    `json:"remaining_quota"`
}

// Login validates the submitted password against the configured secrets and
// establishes a session on success.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeValidation, "invalid payload")
		return
	}

	role, err := a.Gate.Authenticate(req.Password)
	if err != nil {
		// Deliberately generic: the response does not reveal which secret
		// (if any) was close.
		a.error(w, r, http.StatusUnauthorized, codeAuthFailure, "")
		return
	}

	sess, err := a.Sessions.Establish(w, r, role)
	if err != nil {
		a.Logger.Error().Err(err).Msg("establish session failed")
		a.error(w, r, http.StatusInternalServerError, codeConfiguration, "")
		return
	}

	a.Logger.Info().Str("role", string(role)).Msg("login accepted")
	a.json(w, http.StatusOK, sessionResponse{
		Authenticated:  true,
		Role:           string(sess.Role),
		RemainingQuota: a.Quota.Remaining(sess),
	})
}

// Logout destroys the session state and expires the cookie.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Clear(w, r); err != nil {
		a.Logger.Warn().Err(err).Msg("clear session failed")
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SessionInfo reports the current authentication state and remaining quota.
func (a *App) SessionInfo(w http.ResponseWriter, r *http.Request) {
	sess := a.Sessions.Current(r)
	if !sess.Authenticated {
		a.json(w, http.StatusOK, sessionResponse{Authenticated: false, Role: string(domain.RoleNone)})
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		Authenticated:  true,
		Role:           string(sess.Role),
		RemainingQuota: a.Quota.Remaining(sess),
	})
}
