package service

import (
	"context"
	"time"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below are satisfied by the mongo repositories and by the
// in-memory fakes used in tests.

type UserStore interface {
	Insert(ctx context.Context, u *models.UserDoc) error
	FindByEmail(ctx context.Context, email string) (*models.UserDoc, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p repository.ProfileUpdate) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool, reason string, at time.Time) error
	SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error
	SetCommunityRole(ctx context.Context, id primitive.ObjectID, role string) error
	Search(ctx context.Context, f models.UserFilter) ([]models.UserDoc, int64, error)
	ActiveIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type CommentStore interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	List(ctx context.Context, f models.CommentFilter) ([]models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error)
}

type DiscussionStore interface {
	Insert(ctx context.Context, d *models.Discussion) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error)
	List(ctx context.Context, f models.DiscussionFilter) ([]models.Discussion, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, u repository.DiscussionUpdate) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	IncViews(ctx context.Context, id primitive.ObjectID) error
	AdjustReplyCount(ctx context.Context, id primitive.ObjectID, delta int) error
	SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error
	SetLocked(ctx context.Context, id primitive.ObjectID, locked bool) error
	SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error)
}

type ReplyStore interface {
	Insert(ctx context.Context, r *models.DiscussionReply) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DiscussionReply, error)
	ListByDiscussion(ctx context.Context, discussionID primitive.ObjectID) ([]models.DiscussionReply, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	SoftDeleteByDiscussion(ctx context.Context, discussionID primitive.ObjectID) (int64, error)
	SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindLive(ctx context.Context, userID primitive.ObjectID, animeID string) (*models.Review, error)
	List(ctx context.Context, f models.ReviewFilter) ([]models.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, u repository.ReviewUpdate) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error)
}

type AnimeStatsStore interface {
	Get(ctx context.Context, animeID string) (*models.AnimeStats, error)
	IncRating(ctx context.Context, animeID, animeTitle string, sumDelta, countDelta int, at time.Time) error
	IncCommentCount(ctx context.Context, animeID string, delta int) error
	Top(ctx context.Context, metric string, limit int) ([]models.AnimeStats, error)
}

type BadgeStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Badge, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Badge, error)
	FindByRoleID(ctx context.Context, roleID string) (*models.Badge, error)
	Insert(ctx context.Context, b *models.Badge) error
	Replace(ctx context.Context, b *models.Badge) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SeedSystem(ctx context.Context, badges []models.Badge) (int, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	InsertMany(ctx context.Context, ns []models.Notification) (int, error)
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type ScheduleStore interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ScheduleSubscription, error)
	Find(ctx context.Context, userID primitive.ObjectID, animeID string) (*models.ScheduleSubscription, error)
	Insert(ctx context.Context, s *models.ScheduleSubscription) error
	Delete(ctx context.Context, userID primitive.ObjectID, animeID string) (bool, error)
	SubscriberIDs(ctx context.Context, animeID string) ([]primitive.ObjectID, error)
}

type ProgressStore interface {
	Upsert(ctx context.Context, p *models.WatchProgress) (*models.WatchProgress, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.WatchProgress, error)
	ListByAnime(ctx context.Context, userID primitive.ObjectID, animeID string) ([]models.WatchProgress, error)
	Get(ctx context.Context, userID primitive.ObjectID, animeID string, episode int) (*models.WatchProgress, error)
	DeleteByAnime(ctx context.Context, userID primitive.ObjectID, animeID string) (int64, error)
}

type InteractionStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.AnimeInteraction, error)
	Save(ctx context.Context, a *models.AnimeInteraction) error
}

type BannedWordStore interface {
	List(ctx context.Context) ([]models.BannedWord, error)
	Insert(ctx context.Context, w *models.BannedWord) error
	Delete(ctx context.Context, word string) error
}

type StatsStore interface {
	Collect(ctx context.Context, now time.Time) (*models.AdminStats, error)
}
