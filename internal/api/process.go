package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/database"
	"github.com/snarg/speech-relay/internal/metrics"
	"github.com/snarg/speech-relay/internal/process"
)

// Processor runs an upload through transcription and translation.
type Processor interface {
	Process(ctx context.Context, req process.Request) (*process.Result, error)
}

// JobRecorder stores metadata about a processed upload.
type JobRecorder interface {
	InsertJob(ctx context.Context, row database.JobRow) (int64, error)
}

// ProcessHandler handles audio uploads for transcription and translation.
type ProcessHandler struct {
	processor Processor
	recorder  JobRecorder // nil disables job history
	maxUpload int64
	log       zerolog.Logger

	inFlight atomic.Int64
}

// NewProcessHandler creates a new process handler. recorder may be nil.
func NewProcessHandler(processor Processor, recorder JobRecorder, maxUpload int64, log zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{
		processor: processor,
		recorder:  recorder,
		maxUpload: maxUpload,
		log:       log.With().Str("handler", "process").Logger(),
	}
}

// Routes registers the process endpoint.
func (h *ProcessHandler) Routes(r chi.Router) {
	r.Post("/process", h.Process)
}

// InFlight reports requests currently being processed.
func (h *ProcessHandler) InFlight() int64 { return h.inFlight.Load() }

// Process handles POST /process.
// Accepts a multipart form with a "file" audio part and a "target_language" field.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	h.inFlight.Add(1)
	defer h.inFlight.Add(-1)
	start := time.Now()

	req, err := h.readRequest(w, r)
	if err != nil {
		h.finish(w, r, start, req, nil, err)
		return
	}

	result, err := h.processor.Process(r.Context(), req)
	h.finish(w, r, start, req, result, err)
}

// readRequest parses the multipart upload into a process.Request. The
// returned request carries whatever was parsed even when err is non-nil.
// target_language is validated by the processor, after the file type.
func (h *ProcessHandler) readRequest(w http.ResponseWriter, r *http.Request) (process.Request, error) {
	var req process.Request
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, apperr.TooLarge(h.maxUpload)
		}
		return req, apperr.Invalid("invalid multipart form: " + err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	req.TargetLanguage = r.FormValue("target_language")

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, apperr.Invalid("file is required")
	}
	defer file.Close()
	req.Filename = header.Filename

	data, err := io.ReadAll(file)
	if err != nil {
		return req, apperr.Invalid("failed to read audio file")
	}
	req.Data = data
	return req, nil
}

// finish writes the response, then updates metrics and job history.
func (h *ProcessHandler) finish(w http.ResponseWriter, r *http.Request, start time.Time, req process.Request, result *process.Result, err error) {
	row := database.JobRow{
		RequestID:      r.Header.Get("X-Request-ID"),
		Filename:       req.Filename,
		SizeBytes:      int64(len(req.Data)),
		TargetLanguage: req.TargetLanguage,
		Status:         "ok",
	}

	if err != nil {
		kind := apperr.KindOf(err)
		status := apperr.HTTPStatus(err)
		ev := h.log.Error()
		if status < http.StatusInternalServerError {
			ev = h.log.Warn()
		}
		ev.Err(err).Str("kind", kind.String()).Int("status", status).Str("filename", req.Filename).Msg("process request failed")
		WriteAppError(w, err)
		metrics.ProcessRequestsTotal.WithLabelValues(kind.String()).Inc()
		row.Status = "error"
		row.ErrorKind = kind.String()
	} else {
		WriteJSON(w, http.StatusOK, result)
		metrics.ProcessRequestsTotal.WithLabelValues("ok").Inc()
		row.MimeType = result.MimeType
		row.SourceLanguage = result.SourceLanguage
		row.Chunks = result.Chunks
	}
	row.DurationMs = int(time.Since(start).Milliseconds())

	h.record(r.Context(), row)
}

func (h *ProcessHandler) record(ctx context.Context, row database.JobRow) {
	if h.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := h.recorder.InsertJob(ctx, row); err != nil {
		h.log.Warn().Err(err).Str("filename", row.Filename).Msg("failed to record job")
	}
}
