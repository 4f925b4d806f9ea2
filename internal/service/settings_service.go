package service

import (
	"context"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsService reads and writes the settings block of the user's
// interaction document.
type SettingsService struct {
	interactions *InteractionService
}

func NewSettingsService(interactions *InteractionService) *SettingsService {
	return &SettingsService{interactions: interactions}
}

func (s *SettingsService) Get(ctx context.Context, userID primitive.ObjectID) (models.Settings, error) {
	a, err := s.interactions.Get(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}
	return a.EffectiveSettings(), nil
}

func (s *SettingsService) Update(ctx context.Context, userID primitive.ObjectID, in models.Settings) (models.Settings, error) {
	if err := validation.Struct(in); err != nil {
		return models.Settings{}, err
	}
	a, err := s.interactions.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.Settings = &in
	})
	if err != nil {
		return models.Settings{}, err
	}
	return a.EffectiveSettings(), nil
}

// Reset drops stored settings so the defaults apply again.
func (s *SettingsService) Reset(ctx context.Context, userID primitive.ObjectID) (models.Settings, error) {
	_, err := s.interactions.update(ctx, userID, func(a *models.AnimeInteraction) {
		a.Settings = nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	return models.DefaultSettings(), nil
}
