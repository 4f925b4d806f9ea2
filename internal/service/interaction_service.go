package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionService keeps the per-user bookmarks, watchlist, history,
// ratings and subscriptions the SPA mirrors locally.
type InteractionService struct {
	store InteractionStore
	now   func() time.Time
}

type InteractionSync struct {
	Bookmarks       []string                   `json:"bookmarks" validate:"dive,required,max=200"`
	Watchlist       []string                   `json:"watchlist" validate:"dive,required,max=200"`
	WatchHistory    []models.WatchHistoryEntry `json:"watchHistory" validate:"dive"`
	Ratings         map[string]int             `json:"ratings" validate:"dive,keys,required,max=200,endkeys,gte=1,lte=10"`
	SubscribedAnime []string                   `json:"subscribedAnime" validate:"dive,required,max=200"`
	Notifications   []models.LocalNotice       `json:"notifications" validate:"dive"`
	Settings        *models.Settings           `json:"settings"`
}

type HistoryInput struct {
	AnimeID       string `json:"animeId" validate:"required,max=200"`
	EpisodeNumber int    `json:"episodeNumber" validate:"gte=0"`
	Title         string `json:"title" validate:"max=300"`
	Image         string `json:"image" validate:"max=1000"`
}

type RatingInput struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=10"`
}

// ToggleResult is the state of one list after a toggle.
type ToggleResult struct {
	Active bool     `json:"active"`
	List   []string `json:"list"`
}

func NewInteractionService(store InteractionStore) *InteractionService {
	return &InteractionService{store: store, now: time.Now}
}

// Get returns the user's aggregate, or an empty one when nothing is stored.
func (s *InteractionService) Get(ctx context.Context, userID primitive.ObjectID) (*models.AnimeInteraction, error) {
	a, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return models.NewAnimeInteraction(userID), nil
	}
	return a, nil
}

func (s *InteractionService) update(ctx context.Context, userID primitive.ObjectID, fn func(a *models.AnimeInteraction)) (*models.AnimeInteraction, error) {
	a, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	a.Normalize()
	fn(a)
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Sync replaces the stored aggregate with the client's copy. Lists are
// deduplicated and capped; settings are kept when the client sends none.
func (s *InteractionService) Sync(ctx context.Context, userID primitive.ObjectID, in InteractionSync) (*models.AnimeInteraction, error) {
	in.Bookmarks = capIDs(in.Bookmarks)
	in.Watchlist = capIDs(in.Watchlist)
	in.SubscribedAnime = capIDs(in.SubscribedAnime)
	in.WatchHistory = dedupeHistory(in.WatchHistory)
	if len(in.Notifications) > models.MaxLocalNotices {
		in.Notifications = in.Notifications[:models.MaxLocalNotices]
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	return s.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.Bookmarks = in.Bookmarks
		a.Watchlist = in.Watchlist
		a.SubscribedAnime = in.SubscribedAnime
		a.WatchHistory = in.WatchHistory
		a.Ratings = in.Ratings
		a.Notifications = in.Notifications
		if in.Settings != nil {
			a.Settings = in.Settings
		}
		a.Normalize()
	})
}

func (s *InteractionService) ToggleBookmark(ctx context.Context, userID primitive.ObjectID, animeID string) (*ToggleResult, error) {
	return s.toggle(ctx, userID, animeID, func(a *models.AnimeInteraction) *[]string { return &a.Bookmarks })
}

func (s *InteractionService) ToggleWatchlist(ctx context.Context, userID primitive.ObjectID, animeID string) (*ToggleResult, error) {
	return s.toggle(ctx, userID, animeID, func(a *models.AnimeInteraction) *[]string { return &a.Watchlist })
}

func (s *InteractionService) ToggleSubscription(ctx context.Context, userID primitive.ObjectID, animeID string) (*ToggleResult, error) {
	return s.toggle(ctx, userID, animeID, func(a *models.AnimeInteraction) *[]string { return &a.SubscribedAnime })
}

func (s *InteractionService) toggle(ctx context.Context, userID primitive.ObjectID, animeID string, field func(*models.AnimeInteraction) *[]string) (*ToggleResult, error) {
	animeID = strings.TrimSpace(animeID)
	if animeID == "" || len(animeID) > 200 {
		return nil, fmt.Errorf("%w: animeId is required", ErrInvalidInput)
	}
	var active bool
	a, err := s.update(ctx, userID, func(a *models.AnimeInteraction) {
		list := field(a)
		*list, active = toggleID(*list, animeID)
	})
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: active, List: *field(a)}, nil
}

// toggleID removes id from list when present, otherwise puts it first.
func toggleID(list []string, id string) ([]string, bool) {
	for i, v := range list {
		if v == id {
			return append(list[:i:i], list[i+1:]...), false
		}
	}
	return capIDs(append([]string{id}, list...)), true
}

func capIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == models.MaxInteractionIDs {
			break
		}
	}
	return out
}

// AddHistory records an episode as the most recent entry.
func (s *InteractionService) AddHistory(ctx context.Context, userID primitive.ObjectID, in HistoryInput) (*models.AnimeInteraction, error) {
	in.AnimeID = strings.TrimSpace(in.AnimeID)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	entry := models.WatchHistoryEntry{
		AnimeID:       in.AnimeID,
		EpisodeNumber: in.EpisodeNumber,
		Title:         in.Title,
		Image:         in.Image,
		WatchedAt:     s.now().UTC(),
	}
	return s.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.WatchHistory = dedupeHistory(append([]models.WatchHistoryEntry{entry}, a.WatchHistory...))
	})
}

// dedupeHistory keeps the first entry per anime and episode and caps the list.
func dedupeHistory(in []models.WatchHistoryEntry) []models.WatchHistoryEntry {
	type key struct {
		anime string
		ep    int
	}
	out := make([]models.WatchHistoryEntry, 0, len(in))
	seen := make(map[key]struct{}, len(in))
	for _, e := range in {
		k := key{e.AnimeID, e.EpisodeNumber}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
		if len(out) == models.MaxWatchHistory {
			break
		}
	}
	return out
}

func (s *InteractionService) ClearHistory(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.WatchHistory = []models.WatchHistoryEntry{}
	})
	return err
}

func (s *InteractionService) SetRating(ctx context.Context, userID primitive.ObjectID, animeID string, in RatingInput) (map[string]int, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(animeID) == "" {
		return nil, fmt.Errorf("%w: animeId is required", ErrInvalidInput)
	}
	a, err := s.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.Ratings[animeID] = in.Rating
	})
	if err != nil {
		return nil, err
	}
	return a.Ratings, nil
}

func (s *InteractionService) DeleteRating(ctx context.Context, userID primitive.ObjectID, animeID string) (map[string]int, error) {
	a, err := s.update(ctx, userID, func(a *models.AnimeInteraction) {
		delete(a.Ratings, animeID)
	})
	if err != nil {
		return nil, err
	}
	return a.Ratings, nil
}
