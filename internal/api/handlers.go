package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/dispatch"
)

const defaultJobLimit = 50

type Handlers struct {
	dispatcher *dispatch.Dispatcher
}

func NewHandlers(dispatcher *dispatch.Dispatcher) *Handlers {
	return &Handlers{dispatcher: dispatcher}
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProcessAllHandler dispatches every unprocessed completed job. The optional
// JSON body {"limit": n} caps how many jobs are pulled.
func (h *Handlers) ProcessAllHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limit int `json:"limit"`
	}
	// An empty body means "use the default"; only malformed JSON is an error.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Limit <= 0 {
		body.Limit = defaultJobLimit
	}

	summary, err := h.dispatcher.ProcessAllPending(r.Context(), body.Limit)
	if err != nil {
		log.Printf("Failed to dispatch pending jobs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to dispatch pending jobs")
		return
	}

	writeJSON(w, http.StatusAccepted, summary)
}

func (h *Handlers) ProcessJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	videoID, err := h.dispatcher.ProcessJob(r.Context(), jobID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"video_id": videoID,
			"status":   dispatch.StatusPending,
		})
	case errors.Is(err, dispatch.ErrAlreadyProcessed):
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_processed"})
	case errors.Is(err, dispatch.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job not found or not ready")
	case errors.Is(err, dispatch.ErrMediaMissing):
		writeError(w, http.StatusNotFound, "media file not found")
	default:
		log.Printf("Failed to dispatch job %s: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, "failed to dispatch job")
	}
}

func (h *Handlers) ProcessCompanyHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company ID")
		return
	}

	summary, err := h.dispatcher.ProcessCompany(r.Context(), companyID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, summary)
	case errors.Is(err, dispatch.ErrNoJobs):
		writeError(w, http.StatusNotFound, "no completed video jobs for company")
	default:
		log.Printf("Failed to dispatch company %s: %v", companyID, err)
		writeError(w, http.StatusInternalServerError, "failed to dispatch company jobs")
	}
}

func (h *Handlers) PendingJobsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	jobs, err := h.dispatcher.ListPending(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list pending jobs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending jobs")
		return
	}

	type pendingJob struct {
		JobID       string `json:"job_id"`
		CompanyID   string `json:"company_id"`
		CompanyName string `json:"company_name"`
		Platform    string `json:"platform"`
		Filename    string `json:"filename"`
		VideoURL    string `json:"video_url"`
	}

	out := make([]pendingJob, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, pendingJob{
			JobID:       job.JobID.String(),
			CompanyID:   job.CompanyID.String(),
			CompanyName: job.CompanyName,
			Platform:    job.Platform,
			Filename:    filepath.Base(job.FilePath),
			VideoURL:    job.VideoURL,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(out),
		"jobs":  out,
	})
}

func (h *Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if _, err := uuid.Parse(videoID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid video ID")
		return
	}

	status, err := h.dispatcher.Status(r.Context(), videoID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, status)
	case errors.Is(err, dispatch.ErrStatusNotFound):
		writeError(w, http.StatusNotFound, "no analysis found for video")
	default:
		log.Printf("Failed to load status for video %s: %v", videoID, err)
		writeError(w, http.StatusInternalServerError, "failed to load status")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
