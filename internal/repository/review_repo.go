package repository

import (
	"context"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(d *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: d.Collection(db.ColReviews)}
}

type ReviewUpdate struct {
	Rating      *int
	Title       *string
	Content     *string
	HasSpoilers *bool
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *models.Review) error {
	if rv.ID.IsZero() {
		rv.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, rv)
	return insertErr(err)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, r.col, bson.M{"_id": id})
}

// FindLive returns the user's non-deleted review of an anime, if any.
func (r *ReviewRepository) FindLive(ctx context.Context, userID primitive.ObjectID, animeID string) (*models.Review, error) {
	filter := notDeleted()
	filter["userId"] = userID
	filter["animeId"] = animeID
	return findOne[models.Review](ctx, r.col, filter)
}

func (r *ReviewRepository) List(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	filter := notDeleted()
	if f.AnimeID != "" {
		filter["animeId"] = f.AnimeID
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}

	var sort bson.D
	switch f.Sort {
	case "helpful":
		// $size cannot drive a find sort, so helpfulness is ordered in the aggregation below
		return r.listByHelpful(ctx, filter, f.Limit, f.Offset)
	case "rating":
		sort = bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	cur, err := r.col.Find(ctx, filter, page(f.Limit, f.Offset).SetSort(sort))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Review](ctx, cur)
}

func (r *ReviewRepository) listByHelpful(ctx context.Context, filter bson.M, limit, offset int) ([]models.Review, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{"helpfulCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "helpfulCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
	}
	if offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(offset)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Review](ctx, cur)
}

func (r *ReviewRepository) Update(ctx context.Context, id primitive.ObjectID, u ReviewUpdate) error {
	set := bson.M{"isEdited": true, "updatedAt": time.Now().UTC()}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.HasSpoilers != nil {
		set["hasSpoilers"] = *u.HasSpoilers
	}
	return matchedOrNotFound(r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (r *ReviewRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	))
}

func (r *ReviewRepository) SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	return setLike(ctx, r.col, id, userID, like)
}
