package repository

import (
	"context"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WatchProgressRepository struct {
	col *mongo.Collection
}

func NewWatchProgressRepository(d *mongo.Database) *WatchProgressRepository {
	return &WatchProgressRepository{col: d.Collection(db.ColWatchProgress)}
}

// Upsert writes progress keyed by (userId, animeId, episodeNumber) and returns
// the stored document.
func (r *WatchProgressRepository) Upsert(ctx context.Context, p *models.WatchProgress) (*models.WatchProgress, error) {
	now := time.Now().UTC()
	set := bson.M{
		"currentTime": p.CurrentTime,
		"duration":    p.Duration,
		"completed":   p.Completed,
		"updatedAt":   now,
	}
	if p.AnimeTitle != "" {
		set["animeTitle"] = p.AnimeTitle
	}
	if p.EpisodeTitle != "" {
		set["episodeTitle"] = p.EpisodeTitle
	}
	if p.Image != "" {
		set["image"] = p.Image
	}

	var out models.WatchProgress
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": p.UserID, "animeId": p.AnimeID, "episodeNumber": p.EpisodeNumber},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *WatchProgressRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.WatchProgress, error) {
	opts := page(limit, 0).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.WatchProgress](ctx, cur)
}

func (r *WatchProgressRepository) ListByAnime(ctx context.Context, userID primitive.ObjectID, animeID string) ([]models.WatchProgress, error) {
	opts := page(0, 0).SetSort(bson.D{{Key: "episodeNumber", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID, "animeId": animeID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.WatchProgress](ctx, cur)
}

func (r *WatchProgressRepository) Get(ctx context.Context, userID primitive.ObjectID, animeID string, episode int) (*models.WatchProgress, error) {
	return findOne[models.WatchProgress](ctx, r.col, bson.M{"userId": userID, "animeId": animeID, "episodeNumber": episode})
}

func (r *WatchProgressRepository) DeleteByAnime(ctx context.Context, userID primitive.ObjectID, animeID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID, "animeId": animeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
