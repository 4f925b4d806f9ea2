package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aniwatch-api/internal/cache"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	badgesKey = "badges:active"
	badgesTTL = 10 * time.Minute
)

var roleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type BadgeService struct {
	badges BadgeStore
	cache  cache.Store
	now    func() time.Time
}

type BadgeInput struct {
	RoleID      string `json:"roleId" validate:"required,min=2,max=30"`
	Name        string `json:"name" validate:"required,max=50"`
	Icon        string `json:"icon" validate:"max=50"`
	Color       string `json:"color" validate:"max=50"`
	BgColor     string `json:"bgColor" validate:"max=50"`
	BorderColor string `json:"borderColor" validate:"max=50"`
	Order       int    `json:"order" validate:"gte=0"`
	IsActive    *bool  `json:"isActive"`
}

func NewBadgeService(badges BadgeStore, store cache.Store) *BadgeService {
	return &BadgeService{badges: badges, cache: store, now: time.Now}
}

// Seed inserts the built-in badges that are missing.
func (s *BadgeService) Seed(ctx context.Context) error {
	n, err := s.badges.SeedSystem(ctx, models.SystemBadges())
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Info().Int("inserted", n).Msg("[badges] system badges seeded")
		invalidate(ctx, s.cache, badgesKey)
	}
	return nil
}

// List returns active badges in display order.
func (s *BadgeService) List(ctx context.Context) ([]models.Badge, error) {
	return cached(ctx, s.cache, "badges", badgesKey, badgesTTL, func() ([]models.Badge, error) {
		return s.badges.List(ctx, true)
	})
}

// IsActiveRole reports whether roleID names an active badge.
func (s *BadgeService) IsActiveRole(ctx context.Context, roleID string) (bool, error) {
	b, err := s.badges.FindByRoleID(ctx, roleID)
	if err != nil {
		return false, err
	}
	return b != nil && b.IsActive, nil
}

func (s *BadgeService) normalize(in *BadgeInput) error {
	in.RoleID = strings.ToLower(strings.TrimSpace(in.RoleID))
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !roleIDPattern.MatchString(in.RoleID) {
		return fmt.Errorf("%w: roleId may only contain lowercase letters, digits, '-' and '_'", ErrInvalidInput)
	}
	return nil
}

func (s *BadgeService) Create(ctx context.Context, in BadgeInput) (*models.Badge, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.now().UTC()
	b := &models.Badge{
		RoleID:      in.RoleID,
		Name:        in.Name,
		Icon:        in.Icon,
		Color:       in.Color,
		BgColor:     in.BgColor,
		BorderColor: in.BorderColor,
		Order:       in.Order,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.badges.Insert(ctx, b); err != nil {
		return nil, storeErr(err)
	}
	invalidate(ctx, s.cache, badgesKey)
	return b, nil
}

// Update replaces a badge. System badges keep their roleId and stay active.
func (s *BadgeService) Update(ctx context.Context, id primitive.ObjectID, in BadgeInput) (*models.Badge, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}
	b, err := s.badges.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if b.IsSystem {
		if in.RoleID != b.RoleID {
			return nil, fmt.Errorf("%w: system badge roleId cannot change", ErrForbidden)
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, fmt.Errorf("%w: system badge cannot be deactivated", ErrForbidden)
		}
	}

	b.RoleID = in.RoleID
	b.Name = in.Name
	b.Icon = in.Icon
	b.Color = in.Color
	b.BgColor = in.BgColor
	b.BorderColor = in.BorderColor
	b.Order = in.Order
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	b.UpdatedAt = s.now().UTC()
	if err := s.badges.Replace(ctx, b); err != nil {
		return nil, storeErr(err)
	}
	invalidate(ctx, s.cache, badgesKey)
	return b, nil
}

func (s *BadgeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	b, err := s.badges.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrNotFound
	}
	if b.IsSystem {
		return fmt.Errorf("%w: system badges cannot be deleted", ErrForbidden)
	}
	if err := s.badges.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	invalidate(ctx, s.cache, badgesKey)
	return nil
}
