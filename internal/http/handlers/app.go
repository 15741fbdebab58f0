package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"kreator/internal/auth"
	"kreator/internal/domain"
	"kreator/internal/infra"
	"kreator/internal/middleware"
	"kreator/internal/payload"
	"kreator/internal/quota"
	"kreator/internal/refimg"
)

// Invoker submits a built payload to the generation provider.
type Invoker interface {
	Generate(ctx context.Context, modelID string, args payload.Arguments) ([]string, error)
}

// App bundles the handler dependencies.
type App struct {
	Logger   zerolog.Logger
	Config   *infra.Config
	Gate     *auth.Gate
	Sessions *auth.Manager
	Quota    *quota.Tracker
	Resolver *refimg.Resolver
	Invoker  Invoker
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error renders the localized error envelope for the given taxonomy code.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: localizedMessage(code, locale),
		Detail:  detail,
	}})
}

// RequireAuth guards a route group behind an authenticated session.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := a.Sessions.Current(r)
		if !sess.Authenticated || sess.Role == domain.RoleNone {
			a.error(w, r, http.StatusUnauthorized, codeAuthFailure, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
