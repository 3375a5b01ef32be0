// Package api implements the CareerAgent HTTP API.
//
// Routes:
//
//	GET  /                               → liveness banner
//	GET  /health                         → service health
//	POST /upload-resume                  → parse a PDF resume into the profile
//	GET  /profile                        → stored profile with contact info
//	POST /run-search                     → search all sources, then score
//	POST /score                          → score stored jobs
//	GET  /jobs?category=&source=         → jobs by confidence, filtered
//	GET  /job-stats                      → dashboard counters
//	PUT  /update-status/{id}?status=     → manual status transition
//	PUT  /update-recruiter-email/{id}?email=
//	GET  /email-preview/{id}             → composed email draft
//	POST /send-email                     → send the application email
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"careeragent/internal/outreach"
	"careeragent/internal/pipeline"
	"careeragent/internal/profile"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

// Version is reported by /health and the gRPC health service.
const Version = "1.0.0"

// Handler holds shared dependencies.
type Handler struct {
	profiles *profile.Service
	tracker  *tracker.Service
	pipeline *pipeline.Runner
	outreach *outreach.Service
	log      *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(
	profiles *profile.Service,
	tr *tracker.Service,
	runner *pipeline.Runner,
	out *outreach.Service,
	log *zap.Logger,
) *Handler {
	return &Handler{
		profiles: profiles,
		tracker:  tr,
		pipeline: runner,
		outreach: out,
		log:      log.Named("api"),
	}
}

// RegisterRoutes mounts every route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("POST /upload-resume", h.uploadResume)
	mux.HandleFunc("GET /profile", h.getProfile)

	mux.HandleFunc("POST /run-search", h.runSearch)
	mux.HandleFunc("POST /score", h.runScoring)

	mux.HandleFunc("GET /jobs", h.listJobs)
	mux.HandleFunc("GET /job-stats", h.jobStats)
	mux.HandleFunc("PUT /update-status/{id}", h.updateStatus)
	mux.HandleFunc("PUT /update-recruiter-email/{id}", h.updateRecruiterEmail)

	mux.HandleFunc("GET /email-preview/{id}", h.emailPreview)
	mux.HandleFunc("POST /send-email", h.sendEmail)
}

// Routes returns the full handler with the middleware chain applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Chain(mux, RequestID, Recover(h.log), AccessLog(h.log), Cors)
}

// ─── Handlers ────────────────────────────────────────────────────────────────

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"message": "CareerAgent API is running."})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": "careeragent",
		"version": Version,
	})
}

func (h *Handler) uploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, profile.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "multipart field \"file\" is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "could not read upload", http.StatusBadRequest)
		return
	}

	p, err := h.profiles.Upload(r.Context(), header.Filename, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"message": "Resume parsed successfully.",
		"profile": p,
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{"profile": p})
}

func (h *Handler) runSearch(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Search(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"message":        fmt.Sprintf("Search complete. %d new jobs found, %d scored.", res.NewJobs, res.Scored),
		"new_jobs_count": res.NewJobs,
		"scored_count":   res.Scored,
	})
}

func (h *Handler) runScoring(w http.ResponseWriter, r *http.Request) {
	n, err := h.pipeline.Score(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]int{"scored_count": n})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.tracker.ListJobs(r.Context(), store.JobFilter{
		Status: q.Get("category"),
		Source: q.Get("source"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, jobs)
}

func (h *Handler) jobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracker.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, stats)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	job, err := h.tracker.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"message": fmt.Sprintf("Job %d status updated to '%s'.", id, job.Status),
		"job":     job,
	})
}

func (h *Handler) updateRecruiterEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	email := r.URL.Query().Get("email")
	job, err := h.tracker.SetRecruiterEmail(r.Context(), id, email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, map[string]any{
		"message": fmt.Sprintf("Recruiter email for job %d updated to '%s'.", id, job.RecruiterEmail),
		"job":     job,
	})
}

func (h *Handler) emailPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := jobID(w, r)
	if !ok {
		return
	}
	d, err := h.outreach.Preview(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, d)
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req outreach.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	res, err := h.outreach.Send(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonOK(w, res)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jobID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid job id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestId", RequestIDFrom(r.Context())),
			zap.Error(err))
	}
	jsonError(w, errorMessage(err, code), code)
}
