package handler

import (
	"net/http"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscussionHandler struct {
	svc *service.DiscussionService
}

func NewDiscussionHandler(s *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{svc: s}
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

// @Summary List discussions
// @Description Pinned discussions come first, then the requested order
// @Tags discussions
// @Produce json
// @Param animeId query string false "anime id"
// @Param category query string false "general|episode|theory|recommendation|news|review"
// @Param q query string false "title search"
// @Param sort query string false "latest|popular|active"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.DiscussionPage
// @Router /api/discussions [get]
func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := page(r)
	res, err := h.svc.List(r.Context(), models.DiscussionFilter{
		AnimeID:  q.Get("animeId"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Get a discussion with its replies
// @Tags discussions
// @Produce json
// @Param id path string true "discussion id"
// @Success 200 {object} service.DiscussionDetail
// @Failure 404 {object} ErrorResponse
// @Router /api/discussions/{id} [get]
func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// @Summary Start a discussion
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.DiscussionInput true "discussion"
// @Success 201 {object} models.Discussion
// @Failure 400 {object} ErrorResponse
// @Router /api/discussions [post]
func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.DiscussionInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.Create(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// @Summary Edit a discussion
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "discussion id"
// @Param body body service.DiscussionPatch true "fields to change"
// @Success 200 {object} models.Discussion
// @Router /api/discussions/{id} [put]
func (h *DiscussionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.DiscussionPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.Update(r.Context(), actor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// @Summary Delete a discussion and its replies
// @Tags discussions
// @Security BearerAuth
// @Param id path string true "discussion id"
// @Success 204
// @Router /api/discussions/{id} [delete]
func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// @Summary Like or unlike a discussion
// @Tags discussions
// @Security BearerAuth
// @Produce json
// @Param id path string true "discussion id"
// @Success 200 {object} models.LikeResult
// @Router /api/discussions/{id}/like [post]
func (h *DiscussionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
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

// @Summary Reply to a discussion
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "discussion id"
// @Param body body service.ReplyInput true "reply"
// @Success 201 {object} models.DiscussionReply
// @Failure 403 {object} ErrorResponse "discussion locked"
// @Router /api/discussions/{id}/replies [post]
func (h *DiscussionHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ReplyInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := h.svc.AddReply(r.Context(), actor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func replyIDs(r *http.Request) (discussionID, replyID primitive.ObjectID, err error) {
	d, err := objectIDParam(r, "id")
	if err != nil {
		return d, d, err
	}
	rep, err := objectIDParam(r, "replyId")
	return d, rep, err
}

// @Summary Edit a reply
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "discussion id"
// @Param replyId path string true "reply id"
// @Param body body service.ReplyInput true "new content"
// @Success 200 {object} models.DiscussionReply
// @Router /api/discussions/{id}/replies/{replyId} [put]
func (h *DiscussionHandler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	did, rid, err := replyIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ReplyInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := h.svc.UpdateReply(r.Context(), actor(r), did, rid, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// @Summary Delete a reply
// @Tags discussions
// @Security BearerAuth
// @Param id path string true "discussion id"
// @Param replyId path string true "reply id"
// @Success 204
// @Router /api/discussions/{id}/replies/{replyId} [delete]
func (h *DiscussionHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	did, rid, err := replyIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteReply(r.Context(), actor(r), did, rid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Like or unlike a reply
// @Tags discussions
// @Security BearerAuth
// @Produce json
// @Param id path string true "discussion id"
// @Param replyId path string true "reply id"
// @Success 200 {object} models.LikeResult
// @Router /api/discussions/{id}/replies/{replyId}/like [post]
func (h *DiscussionHandler) ToggleReplyLike(w http.ResponseWriter, r *http.Request) {
	did, rid, err := replyIDs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.ToggleReplyLike(r.Context(), actor(r), did, rid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Pin or unpin a discussion (admin)
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Param id path string true "discussion id"
// @Param body body pinRequest true "pinned flag"
// @Success 204
// @Router /api/discussions/{id}/pin [put]
func (h *DiscussionHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req pinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.SetPinned(r.Context(), actor(r), id, req.Pinned); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Lock or unlock a discussion (admin)
// @Tags discussions
// @Security BearerAuth
// @Accept json
// @Param id path string true "discussion id"
// @Param body body lockRequest true "locked flag"
// @Success 204
// @Router /api/discussions/{id}/lock [put]
func (h *DiscussionHandler) SetLocked(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req lockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.SetLocked(r.Context(), actor(r), id, req.Locked); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
