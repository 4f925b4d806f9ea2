package handler

import (
	"net/http"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// InteractionHandler serves the per-user lists the SPA keeps in sync, plus
// playback settings.
type InteractionHandler struct {
	svc      *service.InteractionService
	settings *service.SettingsService
}

func NewInteractionHandler(s *service.InteractionService, settings *service.SettingsService) *InteractionHandler {
	return &InteractionHandler{svc: s, settings: settings}
}

// @Summary My interactions
// @Tags user-interactions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.AnimeInteraction
// @Router /api/user-interactions [get]
func (h *InteractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// @Summary Replace my interactions with the client copy
// @Tags user-interactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.InteractionSync true "full state"
// @Success 200 {object} models.AnimeInteraction
// @Router /api/user-interactions [put]
func (h *InteractionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req service.InteractionSync
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.Sync(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *InteractionHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(r *http.Request, animeID string) (*service.ToggleResult, error)) {
	res, err := fn(r, chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Toggle a bookmark
// @Tags user-interactions
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} service.ToggleResult
// @Router /api/user-interactions/bookmarks/{animeId} [post]
func (h *InteractionHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(r *http.Request, id string) (*service.ToggleResult, error) {
		return h.svc.ToggleBookmark(r.Context(), actor(r).ID, id)
	})
}

// @Summary Toggle a watchlist entry
// @Tags user-interactions
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} service.ToggleResult
// @Router /api/user-interactions/watchlist/{animeId} [post]
func (h *InteractionHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(r *http.Request, id string) (*service.ToggleResult, error) {
		return h.svc.ToggleWatchlist(r.Context(), actor(r).ID, id)
	})
}

// @Summary Toggle a new-episode subscription
// @Tags user-interactions
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} service.ToggleResult
// @Router /api/user-interactions/subscriptions/{animeId} [post]
func (h *InteractionHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, func(r *http.Request, id string) (*service.ToggleResult, error) {
		return h.svc.ToggleSubscription(r.Context(), actor(r).ID, id)
	})
}

// @Summary Record a watched episode
// @Tags user-interactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.HistoryInput true "entry"
// @Success 200 {object} models.AnimeInteraction
// @Router /api/user-interactions/history [post]
func (h *InteractionHandler) AddHistory(w http.ResponseWriter, r *http.Request) {
	var req service.HistoryInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.svc.AddHistory(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// @Summary Clear watch history
// @Tags user-interactions
// @Security BearerAuth
// @Success 204
// @Router /api/user-interactions/history [delete]
func (h *InteractionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context(), actor(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Rate an anime privately
// @Tags user-interactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param animeId path string true "anime id"
// @Param body body service.RatingInput true "rating 1..10"
// @Success 200 {object} map[string]int
// @Router /api/user-interactions/ratings/{animeId} [put]
func (h *InteractionHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req service.RatingInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ratings, err := h.svc.SetRating(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

// @Summary Remove a private rating
// @Tags user-interactions
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} map[string]int
// @Router /api/user-interactions/ratings/{animeId} [delete]
func (h *InteractionHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.svc.DeleteRating(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

// @Summary Playback settings
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Settings
// @Router /api/settings [get]
func (h *InteractionHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// @Summary Replace playback settings
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.Settings true "settings"
// @Success 200 {object} models.Settings
// @Router /api/settings [put]
func (h *InteractionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.settings.Update(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// @Summary Reset playback settings
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Settings
// @Router /api/settings [delete]
func (h *InteractionHandler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Reset(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
