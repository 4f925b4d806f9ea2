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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection(db.ColUsers)}
}

// ProfileUpdate carries the optional fields a user may change on themselves.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
	Bio    *string
}

func (r *UserRepository) Insert(ctx context.Context, u *models.UserDoc) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, u)
	return insertErr(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.UserDoc, error) {
	return findOne[models.UserDoc](ctx, r.col, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	return findOne[models.UserDoc](ctx, r.col, bson.M{"_id": id})
}

func (r *UserRepository) set(ctx context.Context, id primitive.ObjectID, set bson.M, unset bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return matchedOrNotFound(r.col.UpdateOne(ctx, bson.M{"_id": id}, update))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, p ProfileUpdate) error {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Avatar != nil {
		set["avatar"] = *p.Avatar
	}
	if p.Bio != nil {
		set["bio"] = *p.Bio
	}
	return r.set(ctx, id, set, nil)
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.set(ctx, id, bson.M{"passwordHash": hash}, nil)
}

func (r *UserRepository) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLoginAt": at}, nil)
}

func (r *UserRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool, reason string, at time.Time) error {
	if banned {
		return r.set(ctx, id, bson.M{"isBanned": true, "bannedReason": reason, "bannedAt": at}, nil)
	}
	return r.set(ctx, id, bson.M{"isBanned": false}, bson.M{"bannedReason": "", "bannedAt": ""})
}

func (r *UserRepository) SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error {
	return r.set(ctx, id, bson.M{"isAdmin": admin}, nil)
}

func (r *UserRepository) SetCommunityRole(ctx context.Context, id primitive.ObjectID, role string) error {
	return r.set(ctx, id, bson.M{"communityRole": role}, nil)
}

// Search lists users for the admin panel, newest first, with the total match count.
func (r *UserRepository) Search(ctx context.Context, f models.UserFilter) ([]models.UserDoc, int64, error) {
	filter := bson.M{}
	if f.Query != "" {
		re := containsRegex(f.Query)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"email": re},
		}
	}
	switch f.Status {
	case "banned":
		filter["isBanned"] = true
	case "admin":
		filter["isAdmin"] = true
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := page(f.Limit, f.Offset).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	users, err := decodeAll[models.UserDoc](ctx, cur)
	return users, total, err
}

// ActiveIDs returns the ids of every user that is not banned.
func (r *UserRepository) ActiveIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"isBanned": bson.M{"$ne": true}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, cur)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
