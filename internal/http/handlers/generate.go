package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"server/internal/domain"
)

type sendResponse struct {
	UID    string `json:"uid"`
	Status string `json:"status"`
}

// Generate runs the synchronous path: the caller blocks for the full duration
// of generation and receives the artifact bytes directly. No job record is
// created.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRequest(w, r)
	if !ok {
		return
	}

	artifact, err := a.Executor.RunSync(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: synchronous generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

// Send runs the submit path: it creates a queued record, schedules the
// executor, and returns the fresh identifier without waiting on execution.
func (a *App) Send(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRequest(w, r)
	if !ok {
		return
	}

	uid := uuid.NewString()
	if err := a.Store.Create(uid, req); err != nil {
		// Unreachable while uuid generation holds; treated as an internal
		// invariant violation.
		a.Logger.Error().Err(err).Str("job_id", uid).Msg("handlers: job creation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.Executor.Schedule(uid)

	a.Logger.Info().Str("job_id", uid).Msg("handlers: job submitted")
	a.json(w, http.StatusOK, sendResponse{UID: uid, Status: string(domain.JobStateQueued)})
}

func (a *App) decodeRequest(w http.ResponseWriter, r *http.Request) (domain.GenerateRequest, bool) {
	var req domain.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", "invalid payload")
		return domain.GenerateRequest{}, false
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
		return domain.GenerateRequest{}, false
	}
	return req, true
}
