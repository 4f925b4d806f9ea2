package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/cache"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/moderation"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	adminStatsKey = "admin:stats"
	adminStatsTTL = 60 * time.Second
)

// AdminService backs the /api/admin routes: user moderation, dashboard
// counts, the banned word list and bulk notifications.
type AdminService struct {
	users    UserStore
	badges   *BadgeService
	words    BannedWordStore
	filter   *moderation.Filter
	stats    StatsStore
	schedule ScheduleStore
	notifier *NotificationService
	cache    cache.Store
	now      func() time.Time
}

type BanInput struct {
	Reason string `json:"reason" validate:"max=500"`
}

type BroadcastInput struct {
	Message string `json:"message" validate:"required,max=500"`
	Link    string `json:"link" validate:"max=1000"`
}

type EpisodeNoticeInput struct {
	AnimeID       string `json:"animeId" validate:"required,max=200"`
	EpisodeNumber int    `json:"episodeNumber" validate:"gte=0"`
	AnimeTitle    string `json:"animeTitle" validate:"required,max=300"`
}

type UserPage struct {
	Users []models.UserDoc `json:"users"`
	Total int64            `json:"total"`
}

func NewAdminService(
	users UserStore,
	badges *BadgeService,
	words BannedWordStore,
	filter *moderation.Filter,
	stats StatsStore,
	schedule ScheduleStore,
	notifier *NotificationService,
	store cache.Store,
) *AdminService {
	return &AdminService{
		users:    users,
		badges:   badges,
		words:    words,
		filter:   filter,
		stats:    stats,
		schedule: schedule,
		notifier: notifier,
		cache:    store,
		now:      time.Now,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, f models.UserFilter) (*UserPage, error) {
	switch f.Status {
	case "", "all", "banned", "admin":
	default:
		return nil, fmt.Errorf("%w: status must be all, banned or admin", ErrInvalidInput)
	}
	f.Query = strings.TrimSpace(f.Query)
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	users, total, err := s.users.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Total: total}, nil
}

func (s *AdminService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *AdminService) Ban(ctx context.Context, actor Actor, id primitive.ObjectID, in BanInput) (*models.UserDoc, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, fmt.Errorf("%w: admins cannot ban themselves", ErrInvalidInput)
	}
	if err := s.users.SetBanned(ctx, id, true, strings.TrimSpace(in.Reason), s.now().UTC()); err != nil {
		return nil, storeErr(err)
	}
	logging.Ctx(ctx).Info().
		Str("admin_id", actor.ID.Hex()).
		Str("user_id", id.Hex()).
		Msg("[admin] user banned")
	invalidate(ctx, s.cache, adminStatsKey)
	return s.GetUser(ctx, id)
}

func (s *AdminService) Unban(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.UserDoc, error) {
	if err := s.users.SetBanned(ctx, id, false, "", time.Time{}); err != nil {
		return nil, storeErr(err)
	}
	logging.Ctx(ctx).Info().
		Str("admin_id", actor.ID.Hex()).
		Str("user_id", id.Hex()).
		Msg("[admin] user unbanned")
	invalidate(ctx, s.cache, adminStatsKey)
	return s.GetUser(ctx, id)
}

// SetAdmin grants or revokes the admin flag. An admin cannot revoke their own.
func (s *AdminService) SetAdmin(ctx context.Context, actor Actor, id primitive.ObjectID, admin bool) (*models.UserDoc, error) {
	if actor.ID == id && !admin {
		return nil, fmt.Errorf("%w: admins cannot remove their own admin rights", ErrInvalidInput)
	}
	if err := s.users.SetAdmin(ctx, id, admin); err != nil {
		return nil, storeErr(err)
	}
	invalidate(ctx, s.cache, adminStatsKey)
	return s.GetUser(ctx, id)
}

// SetCommunityRole assigns the badge shown next to the user's name.
func (s *AdminService) SetCommunityRole(ctx context.Context, id primitive.ObjectID, role string) (*models.UserDoc, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	ok, err := s.badges.IsActiveRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: unknown community role %q", ErrInvalidInput, role)
	}
	if err := s.users.SetCommunityRole(ctx, id, role); err != nil {
		return nil, storeErr(err)
	}
	return s.GetUser(ctx, id)
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	return cached(ctx, s.cache, "admin_stats", adminStatsKey, adminStatsTTL, func() (*models.AdminStats, error) {
		return s.stats.Collect(ctx, s.now().UTC())
	})
}

// LoadBannedWords stores any seed words not yet persisted and loads the full
// persisted list into the filter.
func (s *AdminService) LoadBannedWords(ctx context.Context, seed []string) error {
	now := s.now().UTC()
	for _, w := range seed {
		w = moderation.Normalize(w)
		if w == "" {
			continue
		}
		err := s.words.Insert(ctx, &models.BannedWord{Word: w, CreatedAt: now})
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	words, err := s.words.List(ctx)
	if err != nil {
		return err
	}
	list := make([]string, 0, len(words))
	for _, w := range words {
		list = append(list, w.Word)
	}
	s.filter.Replace(list)
	logging.Info().Int("words", len(list)).Msg("[moderation] banned word list loaded")
	return nil
}

func (s *AdminService) BannedWords(ctx context.Context) ([]models.BannedWord, error) {
	return s.words.List(ctx)
}

func (s *AdminService) AddBannedWord(ctx context.Context, actor Actor, word string) (*models.BannedWord, error) {
	word = moderation.Normalize(word)
	if word == "" || len(word) > 100 {
		return nil, fmt.Errorf("%w: word must be 1 to 100 characters", ErrInvalidInput)
	}
	w := &models.BannedWord{Word: word, AddedBy: actor.ID, CreatedAt: s.now().UTC()}
	if err := s.words.Insert(ctx, w); err != nil {
		return nil, storeErr(err)
	}
	s.filter.Add(word)
	return w, nil
}

func (s *AdminService) RemoveBannedWord(ctx context.Context, word string) error {
	word = moderation.Normalize(word)
	if err := s.words.Delete(ctx, word); err != nil {
		return storeErr(err)
	}
	s.filter.Remove(word)
	return nil
}

// Broadcast sends a system notification to every user that is not banned.
func (s *AdminService) Broadcast(ctx context.Context, actor Actor, in BroadcastInput) (int, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	ids, err := s.users.ActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.notifier.SendMany(ctx, ids, models.Notification{
		Type:    models.NotificationSystem,
		ActorID: &actor.ID,
		Message: in.Message,
		Link:    in.Link,
	})
	if err != nil {
		return n, err
	}
	logging.Ctx(ctx).Info().Int("recipients", n).Msg("[admin] broadcast sent")
	return n, nil
}

// NotifyEpisode tells every schedule subscriber of an anime that a new
// episode is out.
func (s *AdminService) NotifyEpisode(ctx context.Context, in EpisodeNoticeInput) (int, error) {
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	ids, err := s.schedule.SubscriberIDs(ctx, in.AnimeID)
	if err != nil {
		return 0, err
	}
	return s.notifier.SendMany(ctx, ids, models.Notification{
		Type:    models.NotificationEpisode,
		AnimeID: in.AnimeID,
		Message: fmt.Sprintf("Episode %d of %s is now available", in.EpisodeNumber, in.AnimeTitle),
		Link:    fmt.Sprintf("/watch/%s?ep=%d", in.AnimeID, in.EpisodeNumber),
	})
}
