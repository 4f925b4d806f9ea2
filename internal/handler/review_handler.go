package handler

import (
	"net/http"

	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type ReviewHandler struct {
	svc *service.ReviewService
}

func NewReviewHandler(s *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: s}
}

// @Summary Reviews of an anime
// @Description Reviews plus the anime's rating aggregate
// @Tags reviews
// @Produce json
// @Param animeId path string true "anime id"
// @Param sort query string false "recent|helpful|rating"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.AnimeReviews
// @Router /api/reviews/anime/{animeId} [get]
func (h *ReviewHandler) ListByAnime(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	res, err := h.svc.ListByAnime(r.Context(), chi.URLParam(r, "animeId"), r.URL.Query().Get("sort"), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Reviews written by a user
// @Tags reviews
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {array} models.Review
// @Router /api/reviews/user/{userId} [get]
func (h *ReviewHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	uid, err := objectIDParam(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, offset := page(r)
	list, err := h.svc.ListByUser(r.Context(), uid, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Write a review
// @Description One live review per user and anime
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.ReviewInput true "review"
// @Success 201 {object} models.Review
// @Failure 409 {object} ErrorResponse
// @Router /api/reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.svc.Create(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// @Summary Edit a review
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "review id"
// @Param body body service.ReviewPatch true "fields to change"
// @Success 200 {object} models.Review
// @Router /api/reviews/{id} [put]
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ReviewPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.svc.Update(r.Context(), actor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "review id"
// @Success 204
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Mark a review helpful or take it back
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "review id"
// @Success 200 {object} models.LikeResult
// @Router /api/reviews/{id}/like [post]
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.ToggleLike(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Rating aggregate of an anime
// @Tags anime
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} models.AnimeStats
// @Router /api/anime/{animeId}/stats [get]
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// @Summary Top anime
// @Description By review count (popular) or average rating
// @Tags anime
// @Produce json
// @Param metric query string false "popular|rating (default popular)"
// @Param limit query int false "how many"
// @Success 200 {array} models.AnimeStats
// @Router /api/anime/top [get]
func (h *ReviewHandler) Top(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "popular"
	}
	list, err := h.svc.Top(r.Context(), metric, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
