package service

import (
	"context"
	"time"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// Send stores a notification for n.UserID. Notifications to oneself are
// skipped. Failures are logged only; a notification never fails the write
// that triggered it.
func (s *NotificationService) Send(ctx context.Context, n models.Notification) {
	if n.ActorID != nil && *n.ActorID == n.UserID {
		return
	}
	n.ID = primitive.NilObjectID
	n.IsRead = false
	n.CreatedAt = s.now().UTC()
	if err := s.store.Insert(ctx, &n); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("type", n.Type).
			Str("recipient", n.UserID.Hex()).
			Msg("[notify] insert failed")
	}
}

// SendMany fans template out to every recipient and returns how many were stored.
func (s *NotificationService) SendMany(ctx context.Context, recipients []primitive.ObjectID, template models.Notification) (int, error) {
	now := s.now().UTC()
	batch := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		n := template
		n.ID = primitive.NilObjectID
		n.UserID = id
		n.IsRead = false
		n.CreatedAt = now
		batch = append(batch, n)
	}
	return s.store.InsertMany(ctx, batch)
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int) (*NotificationPage, error) {
	limit, offset = clampPage(limit, offset)
	list, err := s.store.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Notifications: list, UnreadCount: unread}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	return storeErr(s.store.MarkRead(ctx, id, userID))
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	return storeErr(s.store.Delete(ctx, id, userID))
}

func (s *NotificationService) Clear(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.DeleteAll(ctx, userID)
}
