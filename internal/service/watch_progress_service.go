package service

import (
	"context"
	"strings"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WatchProgressService struct {
	progress ProgressStore
}

type ProgressInput struct {
	AnimeID       string  `json:"animeId" validate:"required,max=200"`
	EpisodeNumber int     `json:"episodeNumber" validate:"gte=0"`
	CurrentTime   float64 `json:"currentTime" validate:"gte=0"`
	Duration      float64 `json:"duration" validate:"gte=0"`
	Completed     bool    `json:"completed"`
	AnimeTitle    string  `json:"animeTitle" validate:"max=300"`
	EpisodeTitle  string  `json:"episodeTitle" validate:"max=300"`
	Image         string  `json:"image" validate:"max=1000"`
}

func NewWatchProgressService(progress ProgressStore) *WatchProgressService {
	return &WatchProgressService{progress: progress}
}

// Save upserts the caller's position in an episode. An episode counts as
// completed once CompletionRatio of it has been watched.
func (s *WatchProgressService) Save(ctx context.Context, userID primitive.ObjectID, in ProgressInput) (*models.WatchProgress, error) {
	in.AnimeID = strings.TrimSpace(in.AnimeID)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p := &models.WatchProgress{
		UserID:        userID,
		AnimeID:       in.AnimeID,
		EpisodeNumber: in.EpisodeNumber,
		AnimeTitle:    in.AnimeTitle,
		EpisodeTitle:  in.EpisodeTitle,
		Image:         in.Image,
		CurrentTime:   in.CurrentTime,
		Duration:      in.Duration,
	}
	p.Completed = in.Completed || p.Percent() >= models.CompletionRatio
	return s.progress.Upsert(ctx, p)
}

func (s *WatchProgressService) Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.WatchProgress, error) {
	limit, _ = clampPage(limit, 0)
	return s.progress.ListRecent(ctx, userID, limit)
}

func (s *WatchProgressService) ByAnime(ctx context.Context, userID primitive.ObjectID, animeID string) ([]models.WatchProgress, error) {
	return s.progress.ListByAnime(ctx, userID, animeID)
}

func (s *WatchProgressService) Episode(ctx context.Context, userID primitive.ObjectID, animeID string, episode int) (*models.WatchProgress, error) {
	p, err := s.progress.Get(ctx, userID, animeID, episode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *WatchProgressService) DeleteAnime(ctx context.Context, userID primitive.ObjectID, animeID string) (int64, error) {
	return s.progress.DeleteByAnime(ctx, userID, animeID)
}
