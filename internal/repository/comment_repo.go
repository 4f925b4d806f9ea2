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

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(d *mongo.Database) *CommentRepository {
	return &CommentRepository{col: d.Collection(db.ColComments)}
}

func (r *CommentRepository) Insert(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, c)
	return insertErr(err)
}

// FindByID also returns soft-deleted comments; callers check IsDeleted.
func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	return findOne[models.Comment](ctx, r.col, bson.M{"_id": id})
}

func (r *CommentRepository) List(ctx context.Context, f models.CommentFilter) ([]models.Comment, error) {
	filter := notDeleted()
	if f.AnimeID != "" {
		filter["animeId"] = f.AnimeID
	}
	if f.EpisodeNumber != nil {
		filter["episodeNumber"] = *f.EpisodeNumber
	}
	switch {
	case f.ParentID != nil:
		filter["parentId"] = *f.ParentID
	case f.TopLevel:
		filter["parentId"] = bson.M{"$exists": false}
	}

	sortDir := -1
	if f.ParentID != nil {
		// replies read top to bottom
		sortDir = 1
	}
	opts := page(f.Limit, f.Offset).SetSort(bson.D{{Key: "createdAt", Value: sortDir}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Comment](ctx, cur)
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "isEdited": true, "updatedAt": time.Now().UTC()}},
	))
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	))
}

func (r *CommentRepository) SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	return setLike(ctx, r.col, id, userID, like)
}
