package handler

import (
	"net/http"

	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(s *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: s}
}

type subscribedResponse struct {
	Subscribed bool `json:"subscribed"`
}

// @Summary My airing-schedule subscriptions
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ScheduleSubscription
// @Router /api/schedule-subscriptions [get]
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Subscribe or unsubscribe
// @Tags schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.ScheduleInput true "anime"
// @Success 200 {object} subscribedResponse
// @Router /api/schedule-subscriptions/toggle [post]
func (h *ScheduleHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req service.ScheduleInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	on, err := h.svc.Toggle(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribedResponse{Subscribed: on})
}

// @Summary Subscription status for an anime
// @Tags schedule
// @Security BearerAuth
// @Produce json
// @Param animeId path string true "anime id"
// @Success 200 {object} subscribedResponse
// @Router /api/schedule-subscriptions/{animeId}/status [get]
func (h *ScheduleHandler) Status(w http.ResponseWriter, r *http.Request) {
	on, err := h.svc.Status(r.Context(), actor(r).ID, chi.URLParam(r, "animeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribedResponse{Subscribed: on})
}
