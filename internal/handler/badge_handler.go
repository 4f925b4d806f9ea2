package handler

import (
	"net/http"

	"aniwatch-api/internal/service"
)

type BadgeHandler struct {
	svc *service.BadgeService
}

func NewBadgeHandler(s *service.BadgeService) *BadgeHandler {
	return &BadgeHandler{svc: s}
}

// @Summary Active community badges
// @Tags badges
// @Produce json
// @Success 200 {array} models.Badge
// @Router /api/badges [get]
func (h *BadgeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Create a badge (admin)
// @Tags badges
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.BadgeInput true "badge"
// @Success 201 {object} models.Badge
// @Failure 409 {object} ErrorResponse
// @Router /api/badges [post]
func (h *BadgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.BadgeInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// @Summary Update a badge (admin)
// @Description System badges keep their roleId and stay active
// @Tags badges
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "badge id"
// @Param body body service.BadgeInput true "badge"
// @Success 200 {object} models.Badge
// @Router /api/badges/{id} [put]
func (h *BadgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.BadgeInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// @Summary Delete a badge (admin)
// @Tags badges
// @Security BearerAuth
// @Param id path string true "badge id"
// @Success 204
// @Failure 403 {object} ErrorResponse "system badge"
// @Router /api/badges/{id} [delete]
func (h *BadgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
