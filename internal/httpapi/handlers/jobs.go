package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nabeel-w/ButterCut-Assignment/internal/httpkit"
	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

// maxUploadBytes caps how much of a multipart body is buffered in memory;
// larger files spill to disk.
const maxUploadBytes = 32 << 20

// PostJob accepts a multipart submission: a "file" video part plus an
// "overlays" form field holding a JSON array. The upload is persisted, the
// job recorded as pending and its ID pushed onto the queue. Validation
// failures reject the whole submission before anything is stored.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid multipart body", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "video file is required", map[string]any{"field": "file"})
		return
	}
	defer file.Close()

	overlays := []models.Overlay{}
	if raw := strings.TrimSpace(r.FormValue("overlays")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overlays); err != nil {
			httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "overlays must be a JSON array", map[string]any{"field": "overlays"})
			return
		}
	}
	if err := models.ValidateOverlays(overlays); err != nil {
		httpkit.WriteError(w, err)
		return
	}

	jobID := uuid.NewString()
	inputPath := filepath.Join(h.uploadDir, jobID+safeExt(header.Filename, ".mp4"))
	if err := saveUpload(file, inputPath); err != nil {
		h.log.Error("failed to persist upload", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to persist upload", nil)
		return
	}

	now := time.Now().UTC()
	job := models.Job{
		ID:        jobID,
		InputPath: inputPath,
		Status:    models.StatusPending,
		Message:   "Queued",
		Overlays:  overlays,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateJob(ctx, job); err != nil {
		_ = os.Remove(inputPath)
		h.log.Error("failed to create job", "error", err.Error())
		httpkit.WriteError(w, err)
		return
	}

	if err := h.queue.Push(ctx, jobID); err != nil {
		h.log.Error("failed to enqueue job", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "queue push failed", nil)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{"job": job})
}

// GetJob returns the polling summary of one job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadJob(w, r)
	if !ok {
		return
	}

	body := map[string]any{
		"id":       job.ID,
		"status":   job.Status,
		"progress": job.Progress,
		"message":  job.Message,
	}
	if job.Status == models.StatusDone {
		body["result_url"] = fmt.Sprintf("/api/v1/jobs/%s/result", job.ID)
	}
	httpkit.WriteJSON(w, 200, body)
}

// GetJobDetail returns the full job record, overlays included.
func (h *Handler) GetJobDetail(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadJob(w, r)
	if !ok {
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"job": job})
}

// GetJobResult streams the rendered output of a finished job.
func (h *Handler) GetJobResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.loadJob(w, r)
	if !ok {
		return
	}

	if job.Status != models.StatusDone || job.OutputPath == "" {
		httpkit.WriteErr(w, 400, "RESULT_NOT_READY", "Result not ready",
			map[string]any{"status": job.Status, "progress": job.Progress})
		return
	}

	// The output path comes from the store; refuse to serve anything that
	// escapes the output directory.
	abs, err := filepath.Abs(job.OutputPath)
	if err != nil || !strings.HasPrefix(abs, filepath.Clean(h.outputDir)+string(filepath.Separator)) {
		h.log.Error("output path outside output dir", "job_id", job.ID, "path", job.OutputPath)
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "output unavailable", nil)
		return
	}
	if _, err := os.Stat(abs); err != nil {
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "output file missing", nil)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(abs)))
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, abs)
}

// ListJobs returns recent jobs, optionally filtered by ?status= and capped
// by ?limit=.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	jobs, err := h.store.ListJobs(r.Context(), status, limit)
	if err != nil {
		h.log.Error("failed to list jobs", "error", err.Error())
		httpkit.WriteError(w, err)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"jobs": jobs})
}

func (h *Handler) loadJob(w http.ResponseWriter, r *http.Request) (models.Job, bool) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.IsNotFound(err) {
			httpkit.WriteErr(w, 404, "NOT_FOUND", "job not found", map[string]any{"job_id": jobID})
		} else {
			h.log.Error("failed to load job", "job_id", jobID, "error", err.Error())
			httpkit.WriteError(w, err)
		}
		return models.Job{}, false
	}
	return job, true
}

func saveUpload(src io.Reader, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, src)
	return err
}

// safeExt keeps the client's file extension when it looks like one, falling
// back otherwise. Only the extension is trusted, never the client filename.
func safeExt(filename, fallback string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return fallback
	}
	return ext
}
