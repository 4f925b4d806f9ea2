package repository

import (
	"context"
	"errors"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BadgeRepository struct {
	col *mongo.Collection
}

func NewBadgeRepository(d *mongo.Database) *BadgeRepository {
	return &BadgeRepository{col: d.Collection(db.ColBadges)}
}

func (r *BadgeRepository) List(ctx context.Context, activeOnly bool) ([]models.Badge, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := page(0, 0).SetSort(bson.D{{Key: "order", Value: 1}, {Key: "roleId", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Badge](ctx, cur)
}

func (r *BadgeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Badge, error) {
	return findOne[models.Badge](ctx, r.col, bson.M{"_id": id})
}

func (r *BadgeRepository) FindByRoleID(ctx context.Context, roleID string) (*models.Badge, error) {
	return findOne[models.Badge](ctx, r.col, bson.M{"roleId": roleID})
}

func (r *BadgeRepository) Insert(ctx context.Context, b *models.Badge) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, b)
	return insertErr(err)
}

// Replace overwrites a badge document by id.
func (r *BadgeRepository) Replace(ctx context.Context, b *models.Badge) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return insertErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BadgeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedSystem inserts the given badges as system badges unless a badge with the
// same roleId already exists. Existing documents are left untouched so admin
// edits to colours survive restarts.
func (r *BadgeRepository) SeedSystem(ctx context.Context, badges []models.Badge) (int, error) {
	now := time.Now().UTC()
	inserted := 0
	for _, b := range badges {
		b.IsSystem = true
		b.IsActive = true
		b.CreatedAt = now
		b.UpdatedAt = now
		b.ID = primitive.NewObjectID()
		res, err := r.col.UpdateOne(ctx,
			bson.M{"roleId": b.RoleID},
			bson.M{"$setOnInsert": b},
			options.Update().SetUpsert(true),
		)
		if err != nil && !errors.Is(insertErr(err), ErrDuplicate) {
			return inserted, err
		}
		if res != nil && res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}
