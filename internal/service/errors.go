package service

import (
	"errors"

	"aniwatch-api/internal/repository"
)

// Sentinel errors returned by the services. Handlers map them to HTTP
// statuses with errors.Is; wrap them with fmt.Errorf to add detail.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("not allowed")
	ErrConflict      = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBannedContent = errors.New("content contains inappropriate language")
	ErrUserBanned    = errors.New("account is banned")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrLocked        = errors.New("discussion is locked")
)

// storeErr translates repository errors into service errors.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	default:
		return err
	}
}
