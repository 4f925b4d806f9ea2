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

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(d *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: d.Collection(db.ColNotifications)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, n)
	return err
}

// InsertMany writes notifications in one unordered batch.
func (r *NotificationRepository) InsertMany(ctx context.Context, ns []models.Notification) (int, error) {
	if len(ns) == 0 {
		return 0, nil
	}
	docs := make([]any, len(ns))
	for i := range ns {
		if ns[i].ID.IsZero() {
			ns[i].ID = primitive.NewObjectID()
		}
		docs[i] = ns[i]
	}
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if res != nil {
		return len(res.InsertedIDs), err
	}
	return 0, err
}

func (r *NotificationRepository) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}
	opts := page(limit, offset).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Notification](ctx, cur)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
}

// MarkRead only touches the notification when it belongs to userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	))
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
