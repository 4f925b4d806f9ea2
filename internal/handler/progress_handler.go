package handler

import (
	"net/http"
	"strconv"

	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type ProgressHandler struct {
	svc *service.WatchProgressService
}

func NewProgressHandler(s *service.WatchProgressService) *ProgressHandler {
	return &ProgressHandler{svc: s}
}

// @Summary Save playback position
// @Description Upserts by user, anime and episode
// @Tags watch-progress
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.ProgressInput true "position"
// @Success 200 {object} models.WatchProgress
// @Router /api/watch-progress [put]
func (h *ProgressHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req service.ProgressInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Save(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// @Summary Continue watching
// @Tags watch-progress
// @Security BearerAuth
// @Produce json
// @Param limit query int false "how many"
// @Success 200 {array} models.WatchProgress
// @Router /api/watch-progress [get]
func (h *ProgressHandler) Recent(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Recent(r.Context(), actor(r).ID, queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Progress for every episode of an anime
// @Tags watch-progress
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {array} models.WatchProgress
// @Router /api/watch-progress/{animeId} [get]
func (h *ProgressHandler) ByAnime(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ByAnime(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Progress for one episode
// @Tags watch-progress
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Param episode path int true "episode number"
// @Success 200 {object} models.WatchProgress
// @Failure 404 {object} ErrorResponse
// @Router /api/watch-progress/{animeId}/{episode} [get]
func (h *ProgressHandler) Episode(w http.ResponseWriter, r *http.Request) {
	ep, err := strconv.Atoi(chi.URLParam(r, "episode"))
	if err != nil || ep < 0 {
		writeStatus(w, http.StatusBadRequest, "invalid_input", "episode must be a non-negative integer")
		return
	}
	p, err := h.svc.Episode(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"), ep)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// @Summary Forget progress for an anime
// @Tags watch-progress
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} countResponse
// @Router /api/watch-progress/{animeId} [delete]
func (h *ProgressHandler) DeleteAnime(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAnime(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
