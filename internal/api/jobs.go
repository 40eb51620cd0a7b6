package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/database"
)

// JobLister reads recorded job history.
type JobLister interface {
	ListJobs(ctx context.Context, limit, offset int) ([]database.JobAPI, int, error)
}

// JobsHandler serves the job history.
type JobsHandler struct {
	jobs JobLister
	log  zerolog.Logger
}

func NewJobsHandler(jobs JobLister, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, log: log.With().Str("handler", "jobs").Logger()}
}

// JobListResponse is a page of job history.
type JobListResponse struct {
	Jobs   []database.JobAPI `json:"jobs"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// List handles GET /api/v1/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, total, err := h.jobs.ListJobs(r.Context(), p.Limit, p.Offset)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list jobs")
		WriteError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	WriteJSON(w, http.StatusOK, JobListResponse{
		Jobs:   jobs,
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
}
