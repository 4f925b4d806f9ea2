package handler

import (
	"net/http"
	"strconv"

	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(s *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: s}
}

// @Summary Comments of an anime
// @Description Top-level comments, newest first. Pass episode to scope to one episode.
// @Tags comments
// @Produce json
// @Param animeId path string true "anime id"
// @Param episode query int false "episode number"
// @Param limit query int false "page size (default 20, max 100)"
// @Param offset query int false "offset"
// @Success 200 {array} models.Comment
// @Router /api/comments/anime/{animeId} [get]
func (h *CommentHandler) ListByAnime(w http.ResponseWriter, r *http.Request) {
	var episode *int
	if v := r.URL.Query().Get("episode"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeStatus(w, http.StatusBadRequest, "invalid_input", "episode must be a non-negative number")
			return
		}
		episode = &n
	}
	limit, offset := page(r)
	list, err := h.svc.ListByAnime(r.Context(), chi.URLParam(r, "animeId"), episode, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Replies to a comment
// @Tags comments
// @Produce json
// @Param id path string true "comment id"
// @Success 200 {array} models.Comment
// @Router /api/comments/{id}/replies [get]
func (h *CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.svc.Replies(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Post a comment
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.CommentInput true "comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse "validation or banned content"
// @Router /api/comments [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Create(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// @Summary Edit a comment
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "comment id"
// @Param body body service.ContentInput true "new content"
// @Success 200 {object} models.Comment
// @Failure 403 {object} ErrorResponse
// @Router /api/comments/{id} [put]
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ContentInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Update(r.Context(), actor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Param id path string true "comment id"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /api/comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// @Summary Like or unlike a comment
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param id path string true "comment id"
// @Success 200 {object} models.LikeResult
// @Router /api/comments/{id}/like [post]
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
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
