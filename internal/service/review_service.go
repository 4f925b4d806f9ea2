package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/cache"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const topAnimeTTL = 5 * time.Minute

type ReviewService struct {
	reviews ReviewStore
	stats   AnimeStatsStore
	users   UserStore
	guard   *ContentGuard
	cache   cache.Store
	now     func() time.Time
}

type ReviewInput struct {
	AnimeID     string `json:"animeId" validate:"required,max=200"`
	AnimeTitle  string `json:"animeTitle" validate:"max=300"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=10"`
	Title       string `json:"title" validate:"max=200"`
	Content     string `json:"content" validate:"required,min=10,max=10000"`
	HasSpoilers bool   `json:"hasSpoilers"`
}

type ReviewPatch struct {
	Rating      *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Content     *string `json:"content" validate:"omitempty,min=10,max=10000"`
	HasSpoilers *bool   `json:"hasSpoilers"`
}

// AnimeReviews is the review listing of one anime with its aggregate.
type AnimeReviews struct {
	Reviews []models.Review   `json:"reviews"`
	Stats   models.AnimeStats `json:"stats"`
}

func NewReviewService(reviews ReviewStore, stats AnimeStatsStore, users UserStore, guard *ContentGuard, store cache.Store) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		stats:   stats,
		users:   users,
		guard:   guard,
		cache:   store,
		now:     time.Now,
	}
}

func checkReviewSort(sort string) error {
	switch sort {
	case "", "recent", "helpful", "rating":
		return nil
	}
	return fmt.Errorf("%w: sort must be recent, helpful or rating", ErrInvalidInput)
}

func (s *ReviewService) ListByAnime(ctx context.Context, animeID, sort string, limit, offset int) (*AnimeReviews, error) {
	if err := checkReviewSort(sort); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	list, err := s.reviews.List(ctx, models.ReviewFilter{AnimeID: animeID, Sort: sort, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, animeID)
	if err != nil {
		return nil, err
	}
	return &AnimeReviews{Reviews: list, Stats: *stats}, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]models.Review, error) {
	limit, offset = clampPage(limit, offset)
	return s.reviews.List(ctx, models.ReviewFilter{UserID: &userID, Limit: limit, Offset: offset})
}

// Stats returns the aggregate of an anime, or a zero value when nobody has
// reviewed it yet.
func (s *ReviewService) Stats(ctx context.Context, animeID string) (*models.AnimeStats, error) {
	st, err := s.stats.Get(ctx, animeID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return &models.AnimeStats{AnimeID: animeID}, nil
	}
	return st, nil
}

func (s *ReviewService) Top(ctx context.Context, metric string, limit int) ([]models.AnimeStats, error) {
	if metric == "" {
		metric = "popular"
	}
	if metric != "popular" && metric != "rating" {
		return nil, fmt.Errorf("%w: metric must be popular or rating", ErrInvalidInput)
	}
	limit, _ = clampPage(limit, 0)
	key := fmt.Sprintf("anime:top:%s:%d", metric, limit)
	return cached(ctx, s.cache, "top_anime", key, topAnimeTTL, func() ([]models.AnimeStats, error) {
		return s.stats.Top(ctx, metric, limit)
	})
}

func (s *ReviewService) live(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.IsDeleted {
		return nil, ErrNotFound
	}
	return r, nil
}

// rate folds one rating change into the anime aggregate. The review itself is
// already stored, so a failure here is logged rather than returned.
func (s *ReviewService) rate(ctx context.Context, animeID, animeTitle string, prev, next *int) {
	sum, count := ratingDelta(prev, next)
	if sum == 0 && count == 0 {
		return
	}
	if err := s.stats.IncRating(ctx, animeID, animeTitle, sum, count, s.now().UTC()); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("anime_id", animeID).Msg("[reviews] rating stats not updated")
		return
	}
	invalidate(ctx, s.cache, topAnimeKeys()...)
}

func topAnimeKeys() []string {
	keys := make([]string, 0, 2)
	for _, m := range []string{"popular", "rating"} {
		keys = append(keys, fmt.Sprintf("anime:top:%s:%d", m, defaultPageSize))
	}
	return keys
}

func (s *ReviewService) Create(ctx context.Context, actor Actor, in ReviewInput) (*models.Review, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, in.Title, in.Content); err != nil {
		return nil, err
	}
	author, err := loadAuthor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviews.FindLive(ctx, actor.ID, in.AnimeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: you already reviewed this anime", ErrConflict)
	}

	now := s.now().UTC()
	r := &models.Review{
		AnimeID:     in.AnimeID,
		AnimeTitle:  in.AnimeTitle,
		Rating:      in.Rating,
		Title:       in.Title,
		Content:     in.Content,
		HasSpoilers: in.HasSpoilers,
		Author:      author.Snapshot(),
		Likes:       models.LikeSet{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.reviews.Insert(ctx, r); err != nil {
		return nil, storeErr(err)
	}
	s.rate(ctx, r.AnimeID, r.AnimeTitle, nil, &r.Rating)
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, in ReviewPatch) (*models.Review, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return nil, err
	}
	var texts []string
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
		texts = append(texts, t)
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		if c == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalidInput)
		}
		in.Content = &c
		texts = append(texts, c)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	r, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(r.UserID) {
		return nil, ErrForbidden
	}
	if err := s.guard.Check(ctx, texts...); err != nil {
		return nil, err
	}

	err = s.reviews.Update(ctx, id, repository.ReviewUpdate{
		Rating:      in.Rating,
		Title:       in.Title,
		Content:     in.Content,
		HasSpoilers: in.HasSpoilers,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if in.Rating != nil && *in.Rating != r.Rating {
		prev := r.Rating
		s.rate(ctx, r.AnimeID, r.AnimeTitle, &prev, in.Rating)
	}
	return s.live(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	r, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(r.UserID) {
		return ErrForbidden
	}
	if err := s.reviews.SoftDelete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.rate(ctx, r.AnimeID, r.AnimeTitle, &r.Rating, nil)
	return nil
}

// ToggleLike marks the review helpful for the actor, or unmarks it.
func (s *ReviewService) ToggleLike(ctx context.Context, actor Actor, id primitive.ObjectID) (models.LikeResult, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return models.LikeResult{}, err
	}
	r, err := s.live(ctx, id)
	if err != nil {
		return models.LikeResult{}, err
	}
	return toggleLike(ctx, r.Likes, actor.ID, func(ctx context.Context, like bool) (int, error) {
		return s.reviews.SetLike(ctx, id, actor.ID, like)
	})
}
