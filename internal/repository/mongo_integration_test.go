//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// startMongo runs a throwaway MongoDB and returns a fresh database with indexes.
func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("docker not available")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate mongo: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		t.Fatal(err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	d := client.Database("aniwatch_test")
	if err := db.EnsureIndexes(ctx, d); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return d
}

func TestMongoRepositories(t *testing.T) {
	d := startMongo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("users unique email", func(t *testing.T) {
		users := NewUserRepository(d)
		u := &models.UserDoc{Name: "Ana", Email: "ana@example.com", CreatedAt: now}
		if err := users.Insert(ctx, u); err != nil {
			t.Fatal(err)
		}
		err := users.Insert(ctx, &models.UserDoc{Name: "Ana2", Email: "ana@example.com"})
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		got, err := users.FindByEmail(ctx, "ana@example.com")
		if err != nil || got == nil || got.ID != u.ID {
			t.Fatalf("FindByEmail = %v, %v", got, err)
		}
		missing, err := users.FindByEmail(ctx, "nobody@example.com")
		if err != nil || missing != nil {
			t.Fatalf("missing user = %v, %v", missing, err)
		}
		if err := users.SetBanned(ctx, u.ID, true, "spam", now); err != nil {
			t.Fatal(err)
		}
		list, total, err := users.Search(ctx, models.UserFilter{Status: "banned"})
		if err != nil || total != 1 || list[0].BannedReason != "spam" {
			t.Fatalf("Search banned = %v, %d, %v", list, total, err)
		}
		ids, err := users.ActiveIDs(ctx)
		if err != nil || len(ids) != 0 {
			t.Fatalf("ActiveIDs = %v, %v", ids, err)
		}
	})

	t.Run("likes stay a set", func(t *testing.T) {
		comments := NewCommentRepository(d)
		c := &models.Comment{AnimeID: "21", Content: "nice", Likes: models.LikeSet{}, CreatedAt: now}
		if err := comments.Insert(ctx, c); err != nil {
			t.Fatal(err)
		}
		user := primitive.NewObjectID()
		for i := 0; i < 2; i++ {
			n, err := comments.SetLike(ctx, c.ID, user, true)
			if err != nil || n != 1 {
				t.Fatalf("like #%d = %d, %v", i, n, err)
			}
		}
		n, err := comments.SetLike(ctx, c.ID, user, false)
		if err != nil || n != 0 {
			t.Fatalf("unlike = %d, %v", n, err)
		}
		if _, err := comments.SetLike(ctx, primitive.NewObjectID(), user, true); !errors.Is(err, ErrNotFound) {
			t.Fatalf("like missing = %v", err)
		}
	})

	t.Run("discussion replies soft delete", func(t *testing.T) {
		discussions := NewDiscussionRepository(d)
		replies := NewDiscussionReplyRepository(d)
		disc := &models.Discussion{Title: "Theory", Content: "x", Category: "theory", CreatedAt: now, LastActivityAt: now}
		if err := discussions.Insert(ctx, disc); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			if err := replies.Insert(ctx, &models.DiscussionReply{DiscussionID: disc.ID, Content: "r", CreatedAt: now}); err != nil {
				t.Fatal(err)
			}
		}
		n, err := replies.SoftDeleteByDiscussion(ctx, disc.ID)
		if err != nil || n != 3 {
			t.Fatalf("SoftDeleteByDiscussion = %d, %v", n, err)
		}
		left, err := replies.ListByDiscussion(ctx, disc.ID)
		if err != nil || len(left) != 0 {
			t.Fatalf("replies after delete = %v, %v", left, err)
		}
	})

	t.Run("watch progress upsert", func(t *testing.T) {
		progress := NewWatchProgressRepository(d)
		user := primitive.NewObjectID()
		p := &models.WatchProgress{UserID: user, AnimeID: "1", EpisodeNumber: 3, CurrentTime: 10, Duration: 100}
		if _, err := progress.Upsert(ctx, p); err != nil {
			t.Fatal(err)
		}
		p.CurrentTime = 95
		p.Completed = true
		got, err := progress.Upsert(ctx, p)
		if err != nil || got.CurrentTime != 95 || !got.Completed {
			t.Fatalf("second upsert = %+v, %v", got, err)
		}
		all, err := progress.ListByAnime(ctx, user, "1")
		if err != nil || len(all) != 1 {
			t.Fatalf("ListByAnime = %v, %v", all, err)
		}
	})

	t.Run("badge seed is idempotent", func(t *testing.T) {
		badges := NewBadgeRepository(d)
		first, err := badges.SeedSystem(ctx, models.SystemBadges())
		if err != nil || first != len(models.SystemBadges()) {
			t.Fatalf("first seed = %d, %v", first, err)
		}
		second, err := badges.SeedSystem(ctx, models.SystemBadges())
		if err != nil || second != 0 {
			t.Fatalf("second seed = %d, %v", second, err)
		}
	})

	t.Run("anime stats top", func(t *testing.T) {
		stats := NewAnimeStatsRepository(d)
		now := time.Now().UTC()
		_ = stats.IncRating(ctx, "a", "A", 9, 1, now)
		for _, v := range []int{7, 7, 7, 7, 7} {
			_ = stats.IncRating(ctx, "b", "B", v, 1, now)
		}
		top, err := stats.Top(ctx, "rating", 10)
		if err != nil || len(top) != 2 || top[0].AnimeID != "a" {
			t.Fatalf("Top rating = %v, %v", top, err)
		}
		top, err = stats.Top(ctx, "popular", 1)
		if err != nil || len(top) != 1 || top[0].AnimeID != "b" {
			t.Fatalf("Top popular = %v, %v", top, err)
		}
	})

	t.Run("one live review per user and anime", func(t *testing.T) {
		reviews := NewReviewRepository(d)
		author := models.Author{UserID: primitive.NewObjectID(), UserName: "Ana"}
		first := &models.Review{AnimeID: "30", Rating: 8, Content: "first", Author: author, Likes: models.LikeSet{}, CreatedAt: now}
		if err := reviews.Insert(ctx, first); err != nil {
			t.Fatal(err)
		}
		err := reviews.Insert(ctx, &models.Review{AnimeID: "30", Rating: 3, Content: "again", Author: author, Likes: models.LikeSet{}, CreatedAt: now})
		if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("second live review err = %v", err)
		}
		if err := reviews.SoftDelete(ctx, first.ID); err != nil {
			t.Fatal(err)
		}
		if err := reviews.Insert(ctx, &models.Review{AnimeID: "30", Rating: 5, Content: "rewrite", Author: author, Likes: models.LikeSet{}, CreatedAt: now}); err != nil {
			t.Fatalf("review after soft delete: %v", err)
		}
	})

	t.Run("concurrent rating increments", func(t *testing.T) {
		stats := NewAnimeStatsRepository(d)
		var wg sync.WaitGroup
		for i := 1; i <= 20; i++ {
			wg.Add(1)
			go func(v int) {
				defer wg.Done()
				if err := stats.IncRating(ctx, "race", "Race", v%10+1, 1, time.Now().UTC()); err != nil {
					t.Error(err)
				}
			}(i)
		}
		wg.Wait()
		// remove one 10 and move one 1 to 10
		_ = stats.IncRating(ctx, "race", "", -10, -1, now)
		_ = stats.IncRating(ctx, "race", "", 9, 0, now)

		got, err := stats.Get(ctx, "race")
		if err != nil || got == nil {
			t.Fatalf("Get = %v, %v", got, err)
		}
		// 1..10 twice sums to 110; minus 10 plus 9 leaves 109 over 19
		if got.RatingStats.Count != 19 || got.RatingStats.Sum != 109 {
			t.Fatalf("rating stats = %+v", got.RatingStats)
		}
		if want := 109.0 / 19.0; got.RatingStats.Average < want-1e-9 || got.RatingStats.Average > want+1e-9 {
			t.Fatalf("average = %v, want %v", got.RatingStats.Average, want)
		}
	})
}
