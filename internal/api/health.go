package api

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	db          HealthChecker // nil when job history is disabled
	speechModel string
	gemini      bool
	version     string
	startTime   time.Time
}

func NewHealthHandler(db HealthChecker, speechModel string, gemini bool, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		db:          db,
		speechModel: speechModel,
		gemini:      gemini,
		version:     version,
		startTime:   startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"speech_model": h.speechModel,
		"gemini":       "disabled",
	}
	if h.gemini {
		checks["gemini"] = "enabled"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
