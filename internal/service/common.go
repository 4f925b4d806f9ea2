package service

import (
	"context"
	"time"

	"aniwatch-api/internal/cache"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/metrics"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/moderation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Actor is the authenticated caller as read from the token.
type Actor struct {
	ID      primitive.ObjectID
	IsAdmin bool
}

// CanModify reports whether the actor may edit or delete content owned by ownerID.
func (a Actor) CanModify(ownerID primitive.ObjectID) bool {
	return a.IsAdmin || a.ID == ownerID
}

// ContentGuard rejects text containing a banned word.
type ContentGuard struct {
	filter *moderation.Filter
}

func NewContentGuard(f *moderation.Filter) *ContentGuard {
	return &ContentGuard{filter: f}
}

func (g *ContentGuard) Check(ctx context.Context, texts ...string) error {
	word, found := g.filter.Check(texts...)
	if !found {
		return nil
	}
	metrics.BannedContentRejections.Inc()
	logging.Ctx(ctx).Info().Str("word", word).Msg("[moderation] rejected content")
	return ErrBannedContent
}

// loadAuthor returns the user behind actor, refusing banned or unknown accounts.
func loadAuthor(ctx context.Context, users UserStore, actor Actor) (*models.UserDoc, error) {
	u, err := users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	if u.IsBanned {
		return nil, ErrUserBanned
	}
	return u, nil
}

// requireActive refuses mutations from banned or deleted accounts.
func requireActive(ctx context.Context, users UserStore, actor Actor) error {
	_, err := loadAuthor(ctx, users, actor)
	return err
}

// toggleLike flips the actor's membership in likes through set.
func toggleLike(ctx context.Context, likes models.LikeSet, userID primitive.ObjectID,
	set func(ctx context.Context, like bool) (int, error)) (models.LikeResult, error) {
	liked := !likes.Has(userID)
	n, err := set(ctx, liked)
	if err != nil {
		return models.LikeResult{}, storeErr(err)
	}
	return models.LikeResult{Liked: liked, LikesCount: n}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// cached reads key from store, falling back to load and storing its result.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, store cache.Store, family, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	hit, err := store.GetJSON(ctx, key, &v)
	metrics.RecordCacheLookup(family, hit, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("[cache] read failed")
	}
	if hit {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := store.SetJSON(ctx, key, v, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("[cache] write failed")
	}
	return v, nil
}

func invalidate(ctx context.Context, store cache.Store, keys ...string) {
	if err := store.Delete(ctx, keys...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("[cache] invalidate failed")
	}
}
