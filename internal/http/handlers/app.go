package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/ws"
)

// App bundles the dependencies shared by all handlers.
type App struct {
	Config           *infra.Config
	Logger           infra.Logger
	Store            *jobs.Store
	Executor         *jobs.Executor
	Hub              *ws.Hub
	APIKeyConfigured bool
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
