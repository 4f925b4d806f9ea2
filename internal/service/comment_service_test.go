package service

import (
	"context"
	"errors"
	"testing"

	"aniwatch-api/internal/models"
	"aniwatch-api/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentFixture struct {
	svc      *CommentService
	users    *fakeUsers
	comments *fakeComments
	stats    *fakeAnimeStats
	notes    *fakeNotifications
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		users:    newFakeUsers(),
		comments: newFakeComments(),
		stats:    newFakeAnimeStats(),
		notes:    &fakeNotifications{},
	}
	f.svc = NewCommentService(f.comments, f.users, f.stats, newGuard("spoilerbot"), NewNotificationService(f.notes))
	return f
}

func TestCommentService_Create(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	alice := f.users.add("Alice", false)
	banned := f.users.add("Mallory", false)
	_ = f.users.SetBanned(ctx, banned.ID, true, "spam", alice.CreatedAt)

	tests := []struct {
		name    string
		actor   Actor
		in      CommentInput
		wantErr error
	}{
		{"ok", Actor{ID: alice.ID}, CommentInput{AnimeID: "21", Content: "great fight scene"}, nil},
		{"banned word", Actor{ID: alice.ID}, CommentInput{AnimeID: "21", Content: "ask SpoilerBot for more"}, ErrBannedContent},
		{"banned user", Actor{ID: banned.ID}, CommentInput{AnimeID: "21", Content: "hello"}, ErrUserBanned},
		{"unknown user", Actor{ID: primitive.NewObjectID()}, CommentInput{AnimeID: "21", Content: "hello"}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := f.svc.Create(ctx, tt.actor, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (c.UserName != "Alice" || c.UserRole != models.DefaultCommunityRole) {
				t.Errorf("author snapshot = %+v", c.Author)
			}
		})
	}

	t.Run("empty content is a validation error", func(t *testing.T) {
		_, err := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "21", Content: "   "})
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("err = %v, want validation error", err)
		}
	})

	if st, _ := f.stats.Get(ctx, "21"); st == nil || st.CommentCount != 1 {
		t.Errorf("comment count = %+v, want 1", st)
	}
}

func TestCommentService_ReplyNotifiesParentAuthor(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	alice := f.users.add("Alice", false)
	bob := f.users.add("Bob", false)

	parent, err := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "1", Content: "first"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, Actor{ID: bob.ID}, CommentInput{AnimeID: "1", ParentID: &parent.ID, Content: "reply"}); err != nil {
		t.Fatal(err)
	}
	// self reply must not notify
	if _, err := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "1", ParentID: &parent.ID, Content: "me again"}); err != nil {
		t.Fatal(err)
	}

	notes := f.notes.forUser(alice.ID)
	if len(notes) != 1 || notes[0].Type != models.NotificationCommentReply {
		t.Fatalf("notifications = %+v", notes)
	}

	replies, err := f.svc.Replies(ctx, parent.ID)
	if err != nil || len(replies) != 2 {
		t.Fatalf("Replies = %d, %v", len(replies), err)
	}
	top, _ := f.svc.ListByAnime(ctx, "1", nil, 0, 0)
	if len(top) != 1 {
		t.Errorf("top-level = %d, want 1", len(top))
	}

	_, err = f.svc.Create(ctx, Actor{ID: bob.ID}, CommentInput{AnimeID: "2", ParentID: &parent.ID, Content: "wrong anime"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("cross-anime reply err = %v", err)
	}
}

func TestCommentService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	alice := f.users.add("Alice", false)
	bob := f.users.add("Bob", false)
	admin := f.users.add("Root", true)

	c, _ := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "1", Content: "mine"})

	if _, err := f.svc.Update(ctx, Actor{ID: bob.ID}, c.ID, ContentInput{Content: "hijack"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update err = %v", err)
	}
	if err := f.svc.Delete(ctx, Actor{ID: bob.ID}, c.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete err = %v", err)
	}
	updated, err := f.svc.Update(ctx, Actor{ID: alice.ID}, c.ID, ContentInput{Content: "edited"})
	if err != nil || !updated.IsEdited || updated.Content != "edited" {
		t.Fatalf("owner update = %+v, %v", updated, err)
	}
	if err := f.svc.Delete(ctx, Actor{ID: admin.ID, IsAdmin: true}, c.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := f.svc.Delete(ctx, Actor{ID: alice.ID}, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if stored, _ := f.comments.FindByID(ctx, c.ID); stored == nil || !stored.IsDeleted {
		t.Error("delete must be soft")
	}
}

func TestCommentService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	alice := f.users.add("Alice", false)
	bob := f.users.add("Bob", false)
	c, _ := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "1", Content: "like me"})

	steps := []models.LikeResult{
		{Liked: true, LikesCount: 1},
		{Liked: false, LikesCount: 0},
		{Liked: true, LikesCount: 1},
	}
	for i, want := range steps {
		got, err := f.svc.ToggleLike(ctx, Actor{ID: bob.ID}, c.ID)
		if err != nil || got != want {
			t.Fatalf("toggle #%d = %+v, %v want %+v", i, got, err, want)
		}
	}
	if n := len(f.notes.forUser(alice.ID)); n != 2 {
		t.Errorf("like notifications = %d, want 2", n)
	}
}

func TestCommentService_BannedAuthorCannotMutate(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture()
	alice := f.users.add("Alice", false)
	bob := f.users.add("Bob", false)
	mine, _ := f.svc.Create(ctx, Actor{ID: alice.ID}, CommentInput{AnimeID: "21", Content: "before the ban"})
	theirs, _ := f.svc.Create(ctx, Actor{ID: bob.ID}, CommentInput{AnimeID: "21", Content: "someone else"})
	_ = f.users.SetBanned(ctx, alice.ID, true, "spam", alice.CreatedAt)

	me := Actor{ID: alice.ID}
	tests := []struct {
		name string
		call func() error
	}{
		{"update", func() error {
			_, err := f.svc.Update(ctx, me, mine.ID, ContentInput{Content: "sneaky edit"})
			return err
		}},
		{"like", func() error {
			_, err := f.svc.ToggleLike(ctx, me, theirs.ID)
			return err
		}},
		{"delete", func() error { return f.svc.Delete(ctx, me, mine.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrUserBanned) {
				t.Fatalf("err = %v, want ErrUserBanned", err)
			}
		})
	}
	if stored, _ := f.comments.FindByID(ctx, mine.ID); stored.Content != "before the ban" || stored.IsDeleted {
		t.Errorf("comment changed after ban: %+v", stored)
	}
	if stored, _ := f.comments.FindByID(ctx, theirs.ID); len(stored.Likes) != 0 {
		t.Errorf("like recorded after ban: %v", stored.Likes)
	}
}
