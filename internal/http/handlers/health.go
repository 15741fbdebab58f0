package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status   string `json:"status"`
	Env      string `json:"env"`
	OpenGate bool   `json:"open_gate,omitempty"`
}

// Health reports liveness plus the one deployment fact worth alerting on:
// whether the access gate is running without passwords.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Env:      a.Config.AppEnv,
		OpenGate: a.Gate.Open(),
	})
}
