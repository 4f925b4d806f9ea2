package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aniwatch-api/internal/service"
)

type ctxKey string

const ctxActor ctxKey = "actor"

// Authenticator turns a bearer token into the current caller.
// *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (service.Actor, error)
}

// JWTAuth rejects requests without a valid bearer token or from banned users
// and stores the caller in the request context.
func JWTAuth(tokens Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeStatus(w, http.StatusUnauthorized, "unauthorized", "missing or invalid Authorization header")
				return
			}

			a, err := tokens.Authenticate(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if errors.Is(err, service.ErrUnauthorized) {
				writeStatus(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := WithActor(r.Context(), a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly lets through callers whose stored record has the admin flag.
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := ActorFromContext(r.Context())
			if !ok || !a.IsAdmin {
				writeStatus(w, http.StatusForbidden, "forbidden", "admin only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, a service.Actor) context.Context {
	return context.WithValue(ctx, ctxActor, a)
}

func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	a, ok := ctx.Value(ctxActor).(service.Actor)
	return a, ok
}

// actor is only called behind JWTAuth, so the zero value never escapes.
func actor(r *http.Request) service.Actor {
	a, _ := ActorFromContext(r.Context())
	return a
}
