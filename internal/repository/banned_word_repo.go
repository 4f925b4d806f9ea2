package repository

import (
	"context"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BannedWordRepository struct {
	col *mongo.Collection
}

func NewBannedWordRepository(d *mongo.Database) *BannedWordRepository {
	return &BannedWordRepository{col: d.Collection(db.ColBannedWords)}
}

func (r *BannedWordRepository) List(ctx context.Context) ([]models.BannedWord, error) {
	cur, err := r.col.Find(ctx, bson.M{}, page(0, 0).SetSort(bson.D{{Key: "word", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.BannedWord](ctx, cur)
}

func (r *BannedWordRepository) Insert(ctx context.Context, w *models.BannedWord) error {
	_, err := r.col.InsertOne(ctx, w)
	return insertErr(err)
}

func (r *BannedWordRepository) Delete(ctx context.Context, word string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"word": word})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
