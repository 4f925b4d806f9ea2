package repository

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// notDeleted matches documents that were never soft-deleted.
func notDeleted() bson.M {
	return bson.M{"isDeleted": bson.M{"$ne": true}}
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)

	out := []T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var v T
	err := col.FindOne(ctx, filter, opts...).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func insertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func page(limit, offset int) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}

// setLike adds or removes userID from the likes array of a live document and
// returns the resulting like count. $addToSet keeps the array a set.
func setLike(ctx context.Context, col *mongo.Collection, id, userID primitive.ObjectID, like bool) (int, error) {
	op := "$pull"
	if like {
		op = "$addToSet"
	}
	filter := notDeleted()
	filter["_id"] = id

	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}
	err := col.FindOneAndUpdate(ctx, filter,
		bson.M{op: bson.M{"likes": userID}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"likes": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return len(doc.Likes), nil
}

func containsRegex(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

func matchedOrNotFound(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
