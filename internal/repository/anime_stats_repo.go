package repository

import (
	"context"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnimeStatsRepository struct {
	col *mongo.Collection
}

func NewAnimeStatsRepository(d *mongo.Database) *AnimeStatsRepository {
	return &AnimeStatsRepository{col: d.Collection(db.ColAnimeStats)}
}

func (r *AnimeStatsRepository) Get(ctx context.Context, animeID string) (*models.AnimeStats, error) {
	return findOne[models.AnimeStats](ctx, r.col, bson.M{"animeId": animeID})
}

// IncRating moves the rating sum and count in one atomic pipeline update and
// recomputes the average from them, creating the document if needed.
// Documents written before the sum existed fall back to average*count.
func (r *AnimeStatsRepository) IncRating(ctx context.Context, animeID, animeTitle string, sumDelta, countDelta int, at time.Time) error {
	legacySum := bson.M{"$multiply": bson.A{
		bson.M{"$ifNull": bson.A{"$ratingStats.average", 0}},
		bson.M{"$ifNull": bson.A{"$ratingStats.count", 0}},
	}}
	moved := bson.M{
		"ratingStats.sum": bson.M{"$add": bson.A{
			bson.M{"$ifNull": bson.A{"$ratingStats.sum", legacySum}}, sumDelta,
		}},
		"ratingStats.count": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{
			bson.M{"$ifNull": bson.A{"$ratingStats.count", 0}}, countDelta,
		}}}},
		"ratingStats.lastRatedAt": at,
		"updatedAt":               at,
	}
	if animeTitle != "" {
		moved["animeTitle"] = animeTitle
	}
	derived := bson.M{
		"ratingStats.sum": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$ratingStats.count", 0}}, "$ratingStats.sum", 0,
		}},
		"ratingStats.average": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$ratingStats.count", 0}},
			bson.M{"$divide": bson.A{"$ratingStats.sum", "$ratingStats.count"}},
			0,
		}},
	}

	_, err := r.col.UpdateOne(ctx,
		bson.M{"animeId": animeID},
		mongo.Pipeline{
			{{Key: "$set", Value: moved}},
			{{Key: "$set", Value: derived}},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *AnimeStatsRepository) IncCommentCount(ctx context.Context, animeID string, delta int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"animeId": animeID},
		bson.M{
			"$inc": bson.M{"commentCount": delta},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Top ranks by review count ("popular") or by average rating ("rating").
func (r *AnimeStatsRepository) Top(ctx context.Context, metric string, limit int) ([]models.AnimeStats, error) {
	sortField := "ratingStats.count"
	if metric == "rating" {
		sortField = "ratingStats.average"
	}

	opts := page(limit, 0).SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "animeId", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"ratingStats.count": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.AnimeStats](ctx, cur)
}
