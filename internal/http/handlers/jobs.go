package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type statusResponse struct {
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Message     string `json:"message,omitempty"`
	ModelBase64 string `json:"model_base64,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Status projects the job record onto its status view. The encoded artifact
// appears only once the job completed; the error text only once it failed.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "invalid_input", "job_id required")
		return
	}

	job, err := a.Store.Get(jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			a.error(w, http.StatusNotFound, "not_found", fmt.Sprintf("job %s not found", jobID))
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	resp := statusResponse{
		Status:   string(job.State),
		Progress: job.Progress,
		Message:  job.Message,
	}
	switch job.State {
	case domain.JobStateCompleted:
		resp.ModelBase64 = base64.StdEncoding.EncodeToString(job.Result)
	case domain.JobStateFailed:
		resp.Error = job.Error
	}
	a.json(w, http.StatusOK, resp)
}
