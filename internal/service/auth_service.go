package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users     UserStore
	guard     *ContentGuard
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type ProfileInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=50"`
	Avatar *string `json:"avatar" validate:"omitempty,max=1000"`
	Bio    *string `json:"bio" validate:"omitempty,max=500"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
}

// Claims is what the API reads back from a token.
type Claims struct {
	UserID  primitive.ObjectID
	IsAdmin bool
}

func NewAuthService(users UserStore, guard *ContentGuard, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		guard:     guard,
		jwtSecret: []byte(secret),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a member account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *models.UserDoc, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return "", nil, err
	}
	if err := s.guard.Check(ctx, in.Name); err != nil {
		return "", nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return "", nil, err
	}
	if existing != nil {
		return "", nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()
	u := &models.UserDoc{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  string(hash),
		CommunityRole: models.DefaultCommunityRole,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return "", nil, err
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	logging.Ctx(ctx).Info().Str("user_id", u.ID.Hex()).Msg("[auth] user registered")
	return token, u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.UserDoc, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrUnauthorized
	}
	if u.IsBanned {
		if u.BannedReason != "" {
			return "", nil, fmt.Errorf("%w: %s", ErrUserBanned, u.BannedReason)
		}
		return "", nil, ErrUserBanned
	}

	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("[auth] could not record last login")
	}
	u.LastLoginAt = &now

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// IssueToken signs an HS256 token carrying the user id and admin flag.
func (s *AuthService) IssueToken(u *models.UserDoc) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID.Hex(),
		"admin": u.IsAdmin,
		"exp":   s.now().Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// ParseToken verifies signature and expiry and returns the caller identity.
func (s *AuthService) ParseToken(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrUnauthorized
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrUnauthorized
	}
	sub, _ := mc["sub"].(string)
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return Claims{}, ErrUnauthorized
	}
	admin, _ := mc["admin"].(bool)
	return Claims{UserID: id, IsAdmin: admin}, nil
}

// Authenticate resolves a bearer token to the caller as currently stored.
// Ban and admin status come from the user record, not the token, so a ban or
// demotion takes effect on the next request.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Actor, error) {
	claims, err := s.ParseToken(raw)
	if err != nil {
		return Actor{}, err
	}
	u, err := loadAuthor(ctx, s.users, Actor{ID: claims.UserID})
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: u.ID, IsAdmin: u.IsAdmin}, nil
}

func (s *AuthService) Me(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.UserDoc, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		in.Name = &name
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Name == nil && in.Avatar == nil && in.Bio == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	var texts []string
	if in.Name != nil {
		texts = append(texts, *in.Name)
	}
	if in.Bio != nil {
		texts = append(texts, *in.Bio)
	}
	if err := s.guard.Check(ctx, texts...); err != nil {
		return nil, err
	}

	err := s.users.UpdateProfile(ctx, id, repository.ProfileUpdate{Name: in.Name, Avatar: in.Avatar, Bio: in.Bio})
	if err != nil {
		return nil, storeErr(err)
	}
	return s.Me(ctx, id)
}

func (s *AuthService) ChangePassword(ctx context.Context, id primitive.ObjectID, in PasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return storeErr(s.users.SetPassword(ctx, id, string(hash)))
}

// EnsureAdmin grants the admin flag to the account registered with email.
// Missing accounts are skipped; the flag is applied once they register and
// the server restarts.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		logging.Warn().Str("email", email).Msg("[auth] admin bootstrap account not registered yet")
		return nil
	}
	if u.IsAdmin {
		return nil
	}
	logging.Info().Str("user_id", u.ID.Hex()).Msg("[auth] granting admin to bootstrap account")
	return s.users.SetAdmin(ctx, u.ID, true)
}
