package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/models"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscussionService struct {
	discussions DiscussionStore
	replies     ReplyStore
	users       UserStore
	guard       *ContentGuard
	notifier    *NotificationService
	now         func() time.Time
}

type DiscussionInput struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Content       string   `json:"content" validate:"required,max=10000"`
	Category      string   `json:"category" validate:"omitempty,oneof=general episode theory recommendation news review"`
	AnimeID       string   `json:"animeId" validate:"max=200"`
	AnimeTitle    string   `json:"animeTitle" validate:"max=300"`
	EpisodeNumber *int     `json:"episodeNumber" validate:"omitempty,gte=0"`
	Tags          []string `json:"tags" validate:"max=10,dive,max=30"`
}

type DiscussionPatch struct {
	Title    *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Content  *string  `json:"content" validate:"omitempty,max=10000"`
	Category *string  `json:"category" validate:"omitempty,oneof=general episode theory recommendation news review"`
	Tags     []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
}

type ReplyInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// DiscussionDetail is a discussion with its live replies in posting order.
type DiscussionDetail struct {
	Discussion *models.Discussion       `json:"discussion"`
	Replies    []models.DiscussionReply `json:"replies"`
}

type DiscussionPage struct {
	Discussions []models.Discussion `json:"discussions"`
	Total       int64               `json:"total"`
}

func NewDiscussionService(discussions DiscussionStore, replies ReplyStore, users UserStore, guard *ContentGuard, notifier *NotificationService) *DiscussionService {
	return &DiscussionService{
		discussions: discussions,
		replies:     replies,
		users:       users,
		guard:       guard,
		notifier:    notifier,
		now:         time.Now,
	}
}

func isCategory(c string) bool {
	for _, v := range models.DiscussionCategories {
		if v == c {
			return true
		}
	}
	return false
}

func (s *DiscussionService) List(ctx context.Context, f models.DiscussionFilter) (*DiscussionPage, error) {
	if f.Category != "" && !isCategory(f.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, f.Category)
	}
	switch f.Sort {
	case "", "latest", "popular", "active":
	default:
		return nil, fmt.Errorf("%w: sort must be latest, popular or active", ErrInvalidInput)
	}
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)
	list, total, err := s.discussions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &DiscussionPage{Discussions: list, Total: total}, nil
}

func (s *DiscussionService) live(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	d, err := s.discussions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.IsDeleted {
		return nil, ErrNotFound
	}
	return d, nil
}

// Get returns the discussion with its replies and counts the view.
func (s *DiscussionService) Get(ctx context.Context, id primitive.ObjectID) (*DiscussionDetail, error) {
	d, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.discussions.IncViews(ctx, id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("discussion_id", id.Hex()).Msg("[discussions] view not counted")
	} else {
		d.Views++
	}
	replies, err := s.replies.ListByDiscussion(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DiscussionDetail{Discussion: d, Replies: replies}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *DiscussionService) Create(ctx context.Context, actor Actor, in DiscussionInput) (*models.Discussion, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Tags = cleanTags(in.Tags)
	if in.Category == "" {
		in.Category = "general"
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	texts := append([]string{in.Title, in.Content}, in.Tags...)
	if err := s.guard.Check(ctx, texts...); err != nil {
		return nil, err
	}
	author, err := loadAuthor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := &models.Discussion{
		Title:          in.Title,
		Content:        in.Content,
		Category:       in.Category,
		AnimeID:        in.AnimeID,
		AnimeTitle:     in.AnimeTitle,
		EpisodeNumber:  in.EpisodeNumber,
		Tags:           in.Tags,
		Author:         author.Snapshot(),
		Likes:          models.LikeSet{},
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.discussions.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DiscussionService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, in DiscussionPatch) (*models.Discussion, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return nil, err
	}
	var texts []string
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		in.Title = &t
		texts = append(texts, t)
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		if c == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalidInput)
		}
		in.Content = &c
		texts = append(texts, c)
	}
	if in.Tags != nil {
		in.Tags = cleanTags(in.Tags)
		texts = append(texts, in.Tags...)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	d, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(d.UserID) {
		return nil, ErrForbidden
	}
	if err := s.guard.Check(ctx, texts...); err != nil {
		return nil, err
	}

	err = s.discussions.Update(ctx, id, repository.DiscussionUpdate{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Tags:     in.Tags,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return s.live(ctx, id)
}

// Delete soft-deletes the discussion and every reply under it.
func (s *DiscussionService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	d, err := s.live(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(d.UserID) {
		return ErrForbidden
	}
	if err := s.discussions.SoftDelete(ctx, id); err != nil {
		return storeErr(err)
	}
	n, err := s.replies.SoftDeleteByDiscussion(ctx, id)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Str("discussion_id", id.Hex()).
		Int64("replies", n).
		Msg("[discussions] deleted")
	return nil
}

func (s *DiscussionService) ToggleLike(ctx context.Context, actor Actor, id primitive.ObjectID) (models.LikeResult, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return models.LikeResult{}, err
	}
	d, err := s.live(ctx, id)
	if err != nil {
		return models.LikeResult{}, err
	}
	return toggleLike(ctx, d.Likes, actor.ID, func(ctx context.Context, like bool) (int, error) {
		return s.discussions.SetLike(ctx, id, actor.ID, like)
	})
}

func (s *DiscussionService) AddReply(ctx context.Context, actor Actor, discussionID primitive.ObjectID, in ReplyInput) (*models.DiscussionReply, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	d, err := s.live(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if d.IsLocked {
		return nil, ErrLocked
	}
	if err := s.guard.Check(ctx, in.Content); err != nil {
		return nil, err
	}
	author, err := loadAuthor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	r := &models.DiscussionReply{
		DiscussionID: discussionID,
		Author:       author.Snapshot(),
		Content:      in.Content,
		Likes:        models.LikeSet{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.replies.Insert(ctx, r); err != nil {
		return nil, err
	}
	if err := s.discussions.AdjustReplyCount(ctx, discussionID, 1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("discussion_id", discussionID.Hex()).Msg("[discussions] reply count not updated")
	}

	s.notifier.Send(ctx, models.Notification{
		UserID:       d.UserID,
		Type:         models.NotificationReply,
		ActorID:      &author.ID,
		ActorName:    author.Name,
		AnimeID:      d.AnimeID,
		DiscussionID: &d.ID,
		Message:      fmt.Sprintf("%s replied to your discussion %q", author.Name, d.Title),
		Link:         "/community/discussions/" + d.ID.Hex(),
	})
	return r, nil
}

// liveReply loads a reply and checks it belongs to a live discussion.
func (s *DiscussionService) liveReply(ctx context.Context, discussionID, replyID primitive.ObjectID) (*models.DiscussionReply, error) {
	if _, err := s.live(ctx, discussionID); err != nil {
		return nil, err
	}
	r, err := s.replies.FindByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.IsDeleted || r.DiscussionID != discussionID {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *DiscussionService) UpdateReply(ctx context.Context, actor Actor, discussionID, replyID primitive.ObjectID, in ReplyInput) (*models.DiscussionReply, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	r, err := s.liveReply(ctx, discussionID, replyID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(r.UserID) {
		return nil, ErrForbidden
	}
	if err := s.guard.Check(ctx, in.Content); err != nil {
		return nil, err
	}
	if err := s.replies.UpdateContent(ctx, replyID, in.Content); err != nil {
		return nil, storeErr(err)
	}
	r.Content = in.Content
	r.IsEdited = true
	r.UpdatedAt = s.now().UTC()
	return r, nil
}

func (s *DiscussionService) DeleteReply(ctx context.Context, actor Actor, discussionID, replyID primitive.ObjectID) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	r, err := s.liveReply(ctx, discussionID, replyID)
	if err != nil {
		return err
	}
	if !actor.CanModify(r.UserID) {
		return ErrForbidden
	}
	if err := s.replies.SoftDelete(ctx, replyID); err != nil {
		return storeErr(err)
	}
	if err := s.discussions.AdjustReplyCount(ctx, discussionID, -1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("discussion_id", discussionID.Hex()).Msg("[discussions] reply count not updated")
	}
	return nil
}

func (s *DiscussionService) ToggleReplyLike(ctx context.Context, actor Actor, discussionID, replyID primitive.ObjectID) (models.LikeResult, error) {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return models.LikeResult{}, err
	}
	r, err := s.liveReply(ctx, discussionID, replyID)
	if err != nil {
		return models.LikeResult{}, err
	}
	return toggleLike(ctx, r.Likes, actor.ID, func(ctx context.Context, like bool) (int, error) {
		return s.replies.SetLike(ctx, replyID, actor.ID, like)
	})
}

func (s *DiscussionService) SetPinned(ctx context.Context, actor Actor, id primitive.ObjectID, pinned bool) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if _, err := s.live(ctx, id); err != nil {
		return err
	}
	return storeErr(s.discussions.SetPinned(ctx, id, pinned))
}

func (s *DiscussionService) SetLocked(ctx context.Context, actor Actor, id primitive.ObjectID, locked bool) error {
	if err := requireActive(ctx, s.users, actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if _, err := s.live(ctx, id); err != nil {
		return err
	}
	return storeErr(s.discussions.SetLocked(ctx, id, locked))
}
