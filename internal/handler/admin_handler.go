package handler

import (
	"net/http"
	"net/url"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/service"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves /api/admin. Every route sits behind AdminOnly.
type AdminHandler struct {
	svc *service.AdminService
}

func NewAdminHandler(s *service.AdminService) *AdminHandler {
	return &AdminHandler{svc: s}
}

type adminFlagRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

type communityRoleRequest struct {
	CommunityRole string `json:"communityRole"`
}

type bannedWordRequest struct {
	Word string `json:"word"`
}

type sentResponse struct {
	Sent int `json:"sent"`
}

// @Summary List users
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param q query string false "name or email search"
// @Param status query string false "all|banned|admin"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} service.UserPage
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	q := r.URL.Query()
	res, err := h.svc.ListUsers(r.Context(), models.UserFilter{
		Query:  q.Get("q"),
		Status: q.Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Get a user
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} models.UserDoc
// @Router /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Ban a user
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param body body service.BanInput true "reason"
// @Success 200 {object} models.UserDoc
// @Failure 403 {object} ErrorResponse "self ban"
// @Router /api/admin/users/{id}/ban [put]
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.BanInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Ban(r.Context(), actor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Lift a ban
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} models.UserDoc
// @Router /api/admin/users/{id}/unban [put]
func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Unban(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Grant or revoke admin
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param body body adminFlagRequest true "flag"
// @Success 200 {object} models.UserDoc
// @Router /api/admin/users/{id}/admin [put]
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req adminFlagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.SetAdmin(r.Context(), actor(r), id, req.IsAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Set a community role
// @Description The role must be the roleId of an active badge, or empty to clear
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param body body communityRoleRequest true "role"
// @Success 200 {object} models.UserDoc
// @Router /api/admin/users/{id}/community-role [put]
func (h *AdminHandler) SetCommunityRole(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req communityRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.SetCommunityRole(r.Context(), id, req.CommunityRole)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Dashboard counts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.AdminStats
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// @Summary Banned words
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.BannedWord
// @Router /api/admin/banned-words [get]
func (h *AdminHandler) BannedWords(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.BannedWords(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// @Summary Ban a word
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body bannedWordRequest true "word"
// @Success 201 {object} models.BannedWord
// @Failure 409 {object} ErrorResponse
// @Router /api/admin/banned-words [post]
func (h *AdminHandler) AddBannedWord(w http.ResponseWriter, r *http.Request) {
	var req bannedWordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	bw, err := h.svc.AddBannedWord(r.Context(), actor(r), req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bw)
}

// @Summary Unban a word
// @Tags admin
// @Security BearerAuth
// @Param word path string true "word"
// @Success 204
// @Router /api/admin/banned-words/{word} [delete]
func (h *AdminHandler) RemoveBannedWord(w http.ResponseWriter, r *http.Request) {
	word, err := url.PathUnescape(chi.URLParam(r, "word"))
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid_input", "malformed word")
		return
	}
	if err := h.svc.RemoveBannedWord(r.Context(), word); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Notify every active user
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.BroadcastInput true "message"
// @Success 200 {object} sentResponse
// @Router /api/admin/notifications/broadcast [post]
func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req service.BroadcastInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.Broadcast(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sentResponse{Sent: n})
}

// @Summary Announce a new episode to subscribers
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.EpisodeNoticeInput true "episode"
// @Success 200 {object} sentResponse
// @Router /api/admin/notifications/episode [post]
func (h *AdminHandler) NotifyEpisode(w http.ResponseWriter, r *http.Request) {
	var req service.EpisodeNoticeInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.NotifyEpisode(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sentResponse{Sent: n})
}
