package handlers

import "net/http"

type healthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}

// Health reports process liveness and whether the generation backend has a
// credential. It performs no generation work.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{
		Status:           "ok",
		APIKeyConfigured: a.APIKeyConfigured,
	})
}
