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

type DiscussionRepository struct {
	col *mongo.Collection
}

func NewDiscussionRepository(d *mongo.Database) *DiscussionRepository {
	return &DiscussionRepository{col: d.Collection(db.ColDiscussions)}
}

// DiscussionUpdate carries the fields an author may edit.
type DiscussionUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
}

func (r *DiscussionRepository) Insert(ctx context.Context, d *models.Discussion) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, d)
	return insertErr(err)
}

func (r *DiscussionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Discussion, error) {
	return findOne[models.Discussion](ctx, r.col, bson.M{"_id": id})
}

// List returns pinned discussions first, then the requested order, plus the
// total number of matches.
func (r *DiscussionRepository) List(ctx context.Context, f models.DiscussionFilter) ([]models.Discussion, int64, error) {
	filter := notDeleted()
	if f.AnimeID != "" {
		filter["animeId"] = f.AnimeID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Query != "" {
		re := containsRegex(f.Query)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"tags": re},
		}
	}

	sort := bson.D{{Key: "isPinned", Value: -1}}
	switch f.Sort {
	case "popular":
		sort = append(sort, bson.E{Key: "views", Value: -1}, bson.E{Key: "replyCount", Value: -1})
	case "active":
		sort = append(sort, bson.E{Key: "lastActivityAt", Value: -1})
	default:
		sort = append(sort, bson.E{Key: "createdAt", Value: -1})
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.col.Find(ctx, filter, page(f.Limit, f.Offset).SetSort(sort))
	if err != nil {
		return nil, 0, err
	}
	out, err := decodeAll[models.Discussion](ctx, cur)
	return out, total, err
}

func (r *DiscussionRepository) Update(ctx context.Context, id primitive.ObjectID, u DiscussionUpdate) error {
	set := bson.M{"isEdited": true, "updatedAt": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}
	return matchedOrNotFound(r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (r *DiscussionRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	))
}

func (r *DiscussionRepository) IncViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// AdjustReplyCount moves replyCount by delta. A positive delta also marks the
// discussion as active now.
func (r *DiscussionRepository) AdjustReplyCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	update := bson.M{"$inc": bson.M{"replyCount": delta}}
	if delta > 0 {
		update["$set"] = bson.M{"lastActivityAt": time.Now().UTC()}
	}
	return matchedOrNotFound(r.col.UpdateOne(ctx, bson.M{"_id": id}, update))
}

func (r *DiscussionRepository) SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isPinned": pinned, "updatedAt": time.Now().UTC()}},
	))
}

func (r *DiscussionRepository) SetLocked(ctx context.Context, id primitive.ObjectID, locked bool) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isLocked": locked, "updatedAt": time.Now().UTC()}},
	))
}

func (r *DiscussionRepository) SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	return setLike(ctx, r.col, id, userID, like)
}

type DiscussionReplyRepository struct {
	col *mongo.Collection
}

func NewDiscussionReplyRepository(d *mongo.Database) *DiscussionReplyRepository {
	return &DiscussionReplyRepository{col: d.Collection(db.ColDiscussionReplies)}
}

func (r *DiscussionReplyRepository) Insert(ctx context.Context, reply *models.DiscussionReply) error {
	if reply.ID.IsZero() {
		reply.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, reply)
	return insertErr(err)
}

func (r *DiscussionReplyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DiscussionReply, error) {
	return findOne[models.DiscussionReply](ctx, r.col, bson.M{"_id": id})
}

func (r *DiscussionReplyRepository) ListByDiscussion(ctx context.Context, discussionID primitive.ObjectID) ([]models.DiscussionReply, error) {
	filter := notDeleted()
	filter["discussionId"] = discussionID
	cur, err := r.col.Find(ctx, filter, page(0, 0).SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.DiscussionReply](ctx, cur)
}

func (r *DiscussionReplyRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "isEdited": true, "updatedAt": time.Now().UTC()}},
	))
}

func (r *DiscussionReplyRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return matchedOrNotFound(r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	))
}

// SoftDeleteByDiscussion marks every live reply of a discussion deleted.
func (r *DiscussionReplyRepository) SoftDeleteByDiscussion(ctx context.Context, discussionID primitive.ObjectID) (int64, error) {
	filter := notDeleted()
	filter["discussionId"] = discussionID
	res, err := r.col.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *DiscussionReplyRepository) SetLike(ctx context.Context, id, userID primitive.ObjectID, like bool) (int, error) {
	return setLike(ctx, r.col, id, userID, like)
}
