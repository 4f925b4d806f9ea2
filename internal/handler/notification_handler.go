package handler

import (
	"net/http"

	"aniwatch-api/internal/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: s}
}

type countResponse struct {
	Count int64 `json:"count"`
}

// @Summary My notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "only unread"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.NotificationPage
// @Router /api/notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	res, err := h.svc.List(r.Context(), actor(r).ID, r.URL.Query().Get("unread") == "true", limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Unread notification count
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} countResponse
// @Router /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// @Summary Mark one notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "notification id"
// @Success 204
// @Router /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.MarkRead(r.Context(), actor(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Mark every notification read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} countResponse
// @Router /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllRead(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// @Summary Delete one notification
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "notification id"
// @Success 204
// @Router /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Delete all my notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} countResponse
// @Router /api/notifications [delete]
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Clear(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}
