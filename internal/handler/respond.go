package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/service"
	"aniwatch-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrBannedContent, http.StatusBadRequest, "banned_content"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrUserBanned, http.StatusForbidden, "user_banned"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrLocked, http.StatusForbidden, "discussion_locked"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps a service error to its status and code. Anything unknown
// is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: verr.Error(), Fields: verr.Fields})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, ErrorResponse{Error: m.code, Message: err.Error()})
			return
		}
	}
	logging.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("[http] unhandled error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "internal server error"})
}

func writeStatus(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", service.ErrInvalidInput)
	}
	return nil
}

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", service.ErrInvalidInput, name)
	}
	return id, nil
}

// queryInt returns def when the parameter is missing or not a number.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func page(r *http.Request) (limit, offset int) {
	return queryInt(r, "limit", 0), queryInt(r, "offset", 0)
}
