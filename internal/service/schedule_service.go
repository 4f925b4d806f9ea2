package service

import (
	"context"
	"errors"
	"time"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleService struct {
	subs ScheduleStore
	now  func() time.Time
}

type ScheduleInput struct {
	AnimeID    string `json:"animeId" validate:"required,max=200"`
	AnimeTitle string `json:"animeTitle" validate:"max=300"`
	Image      string `json:"image" validate:"max=1000"`
	AiringDay  string `json:"airingDay" validate:"max=20"`
	AiringTime string `json:"airingTime" validate:"max=20"`
}

func NewScheduleService(subs ScheduleStore) *ScheduleService {
	return &ScheduleService{subs: subs, now: time.Now}
}

func (s *ScheduleService) List(ctx context.Context, userID primitive.ObjectID) ([]models.ScheduleSubscription, error) {
	return s.subs.ListByUser(ctx, userID)
}

// Toggle subscribes the user when no subscription exists and removes it
// otherwise. It returns the resulting state.
func (s *ScheduleService) Toggle(ctx context.Context, userID primitive.ObjectID, in ScheduleInput) (bool, error) {
	if err := validation.Struct(in); err != nil {
		return false, err
	}
	removed, err := s.subs.Delete(ctx, userID, in.AnimeID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	err = s.subs.Insert(ctx, &models.ScheduleSubscription{
		UserID:     userID,
		AnimeID:    in.AnimeID,
		AnimeTitle: in.AnimeTitle,
		Image:      in.Image,
		AiringDay:  in.AiringDay,
		AiringTime: in.AiringTime,
		CreatedAt:  s.now().UTC(),
	})
	// a concurrent toggle may have inserted first
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return false, err
	}
	return true, nil
}

func (s *ScheduleService) Status(ctx context.Context, userID primitive.ObjectID, animeID string) (bool, error) {
	sub, err := s.subs.Find(ctx, userID, animeID)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}
