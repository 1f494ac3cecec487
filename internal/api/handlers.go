// Package api is the thin HTTP surface over the Engine (spec §6): submit
// a job, poll its status, list its clips, delete it. It deliberately adds
// no rate-limiting or authorization logic — both are out of scope (spec
// §1 Non-goals), so only logging/recoverer/CORS ride along as ambient
// HTTP hygiene.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/bobarin/clipforge/internal/engine"
	"github.com/bobarin/clipforge/internal/engineerr"
	"github.com/bobarin/clipforge/internal/models"
)

type Handler struct {
	engine     *engine.Engine
	downloadBaseURL string
}

func NewHandler(e *engine.Engine, downloadBaseURL string) *Handler {
	return &Handler{engine: e, downloadBaseURL: downloadBaseURL}
}

// SubmitJob handles POST /v1/jobs
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var input models.VideoAnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.engine.Submit(r.Context(), input)
	if err != nil {
		respondEngineErr(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"jobId": id})
}

// GetJobStatus handles GET /v1/jobs/{id}
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.engine.Status(id)
	if err != nil {
		respondEngineErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.ToStatusResponse(job))
}

// GetJobClips handles GET /v1/jobs/{id}/clips
func (h *Handler) GetJobClips(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.engine.Status(id)
	if err != nil {
		respondEngineErr(w, err)
		return
	}

	if job.Status != models.StatusCompleted {
		respondError(w, http.StatusConflict, fmt.Sprintf("job is %s, clips are not yet available", job.Status))
		return
	}

	clips := make([]models.ClipResponse, len(job.Clips))
	for i, c := range job.Clips {
		clips[i] = models.ToClipResponse(c, h.downloadURLFor)
	}
	respondJSON(w, http.StatusOK, clips)
}

// DeleteJob handles DELETE /v1/jobs/{id}
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.DeleteJob(id); err != nil {
		respondEngineErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) downloadURLFor(filePath string) string {
	return h.downloadBaseURL + "/" + filepath.Base(filePath)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondEngineErr(w http.ResponseWriter, err error) {
	code := engineerr.CodeOf(err)
	status := statusForCode(code)
	respondJSON(w, status, map[string]string{"error": err.Error(), "code": string(code)})
}

func statusForCode(code engineerr.Code) int {
	switch code {
	case engineerr.InvalidInput:
		return http.StatusBadRequest
	case engineerr.JobNotFound, engineerr.ClipNotFound:
		return http.StatusNotFound
	case engineerr.VideoTooLong, engineerr.FileTooLarge:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
