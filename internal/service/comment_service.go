package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments CommentStore
	users    UserStore
	stats    AnimeStatsStore
	guard    *ContentGuard
	notifier *NotificationService
	now      func() time.Time
}

type CommentInput struct {
	AnimeID       string              `json:"animeId" validate:"required,max=200"`
	EpisodeNumber *int                `json:"episodeNumber" validate:"omitempty,gte=0"`
	ParentID      *primitive.ObjectID `json:"parentId"`
	Content       string              `json:"content" validate:"required,max=2000"`
}

type ContentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func NewCommentService(comments CommentStore, users UserStore, stats AnimeStatsStore, guard *ContentGuard, notifier *NotificationService) *CommentService {
	return &CommentService{
		comments: comments,
		users:    users,
		stats:    stats,
		guard:    guard,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListByAnime returns top-level comments of an anime, newest first.
func (s *CommentService) ListByAnime(ctx context.Context, animeID string, episode *int, limit, offset int) ([]models.Comment, error) {
	limit, offset = clampPage(limit, offset)
	return s.comments.List(ctx, models.CommentFilter{
		AnimeID:       animeID,
		EpisodeNumber: episode,
		TopLevel:      true,
		Limit:         limit,
		Offset:        offset,
	})
}

func (s *CommentService) Replies(ctx context.Context, id primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.live(ctx, id); err != nil {
		return nil, err
	}
	return s.comments.List(ctx, models.CommentFilter{ParentID: &id})
}

func (s *CommentService) live(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsDeleted {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, actor Actor, in CommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, in.Content); err != nil {
		return nil, err
	}
	author, err := loadAuthor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.live(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.AnimeID != in.AnimeID {
			return nil, fmt.Errorf("%w: parent comment belongs to another anime", ErrInvalidInput)
		}
	}

	now := s.now().UTC()
	c := &models.Comment{
		AnimeID:       in.AnimeID,
		EpisodeNumber: in.EpisodeNumber,
		ParentID:      in.ParentID,
		Author:        author.Snapshot(),
		Content:       in.Content,
		Likes:         models.LikeSet{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, err
	}
	if err := s.stats.IncCommentCount(ctx, c.AnimeID, 1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("anime_id", c.AnimeID).Msg("[comments] comment count not updated")
	}

	if parent != nil {
		s.notifier.Send(ctx, models.Notification{
			UserID:    parent.UserID,
			Type:      models.NotificationCommentReply,
			ActorID:   &author.ID,
			ActorName: author.Name,
			AnimeID:   c.AnimeID,
			CommentID: &c.ID,
			Message:   fmt.Sprintf("%s replied to your comment", author.Name),
			Link:      "/watch/" + c.AnimeID,
		})
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, in ContentInput) (*models.Comment, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(c.UserID) {
		return nil, ErrForbidden
	}
	if err := s.guard.Check(ctx, in.Content); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateContent(ctx, id, in.Content); err != nil {
		return nil, storeErr(err)
	}
	c.Content = in.Content
	c.IsEdited = true
	c.UpdatedAt = s.now().UTC()
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	c, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.UserID) {
		return ErrForbidden
	}
	if err := s.comments.SoftDelete(ctx, id); err != nil {
		return storeErr(err)
	}
	if err := s.stats.IncCommentCount(ctx, c.AnimeID, -1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("anime_id", c.AnimeID).Msg("[comments] comment count not updated")
	}
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, actor Actor, id primitive.ObjectID) (models.LikeResult, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return models.LikeResult{}, err
	}
	c, err := s.live(ctx, id)
	if err != nil {
		return models.LikeResult{}, err
	}
	res, err := toggleLike(ctx, c.Likes, actor.ID, func(ctx context.Context, like bool) (int, error) {
		return s.comments.SetLike(ctx, id, actor.ID, like)
	})
	if err != nil {
		return res, err
	}
	if res.Liked {
		s.notifyLike(ctx, actor, c)
	}
	return res, nil
}

func (s *CommentService) notifyLike(ctx context.Context, actor Actor, c *models.Comment) {
	if actor.ID == c.UserID {
		return
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil || u == nil {
		return
	}
	s.notifier.Send(ctx, models.Notification{
		UserID:    c.UserID,
		Type:      models.NotificationLike,
		ActorID:   &u.ID,
		ActorName: u.Name,
		AnimeID:   c.AnimeID,
		CommentID: &c.ID,
		Message:   fmt.Sprintf("%s liked your comment", u.Name),
		Link:      "/watch/" + c.AnimeID,
	})
}
