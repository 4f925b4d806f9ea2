package repository

import (
	"context"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleRepository struct {
	col *mongo.Collection
}

func NewScheduleRepository(d *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{col: d.Collection(db.ColScheduleSubscriptions)}
}

func (r *ScheduleRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ScheduleSubscription, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, page(0, 0).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ScheduleSubscription](ctx, cur)
}

func (r *ScheduleRepository) Find(ctx context.Context, userID primitive.ObjectID, animeID string) (*models.ScheduleSubscription, error) {
	return findOne[models.ScheduleSubscription](ctx, r.col, bson.M{"userId": userID, "animeId": animeID})
}

func (r *ScheduleRepository) Insert(ctx context.Context, s *models.ScheduleSubscription) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, s)
	return insertErr(err)
}

// Delete reports whether a subscription was removed.
func (r *ScheduleRepository) Delete(ctx context.Context, userID primitive.ObjectID, animeID string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "animeId": animeID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// SubscriberIDs lists every user subscribed to an anime's schedule.
func (r *ScheduleRepository) SubscriberIDs(ctx context.Context, animeID string) ([]primitive.ObjectID, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"animeId": animeID},
		options.Find().SetProjection(bson.M{"userId": 1}),
	)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[models.ScheduleSubscription](ctx, cur)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.UserID)
	}
	return ids, nil
}
