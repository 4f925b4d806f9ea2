package handler

import (
	"net/http"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string          `json:"token"`
	User  *models.UserDoc `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Register
// @Description Creates a member account and returns a token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "account"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: u})
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "account banned"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: u})
}

// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserDoc
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), actor(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Update profile
// @Description Only the fields present are changed
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.ProfileInput true "profile fields"
// @Success 200 {object} models.UserDoc
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), actor(r).ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Change password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Param body body service.PasswordInput true "passwords"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.PasswordInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), actor(r).ID, req); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
