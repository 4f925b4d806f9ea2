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

type InteractionRepository struct {
	col *mongo.Collection
}

func NewInteractionRepository(d *mongo.Database) *InteractionRepository {
	return &InteractionRepository{col: d.Collection(db.ColUserInteractions)}
}

func (r *InteractionRepository) Get(ctx context.Context, userID primitive.ObjectID) (*models.AnimeInteraction, error) {
	a, err := findOne[models.AnimeInteraction](ctx, r.col, bson.M{"userId": userID})
	if a != nil {
		a.Normalize()
	}
	return a, err
}

// Save replaces the user's aggregate, creating it on first write.
func (r *InteractionRepository) Save(ctx context.Context, a *models.AnimeInteraction) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"userId": a.UserID}, a, options.Replace().SetUpsert(true))
	return err
}
