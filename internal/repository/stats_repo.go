package repository

import (
	"context"
	"time"

	"aniwatch-api/internal/db"
	"aniwatch-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsRepository counts documents across collections for the admin dashboard.
type StatsRepository struct {
	d *mongo.Database
}

func NewStatsRepository(d *mongo.Database) *StatsRepository {
	return &StatsRepository{d: d}
}

func (r *StatsRepository) Collect(ctx context.Context, now time.Time) (*models.AdminStats, error) {
	out := &models.AdminStats{GeneratedAt: now}
	jobs := []countJob{
		{db.ColUsers, bson.M{}, &out.TotalUsers},
		{db.ColUsers, bson.M{"isBanned": true}, &out.BannedUsers},
		{db.ColUsers, bson.M{"isAdmin": true}, &out.AdminUsers},
		{db.ColUsers, bson.M{"createdAt": bson.M{"$gte": now.AddDate(0, 0, -7)}}, &out.NewUsersLast7Days},
		{db.ColComments, notDeleted(), &out.Comments},
		{db.ColDiscussions, notDeleted(), &out.Discussions},
		{db.ColDiscussionReplies, notDeleted(), &out.DiscussionReplies},
		{db.ColReviews, notDeleted(), &out.Reviews},
		{db.ColScheduleSubscriptions, bson.M{}, &out.ScheduleSubscribers},
	}
	for _, j := range jobs {
		n, err := r.d.Collection(j.col).CountDocuments(ctx, j.filter)
		if err != nil {
			return nil, err
		}
		*j.dst = n
	}
	return out, nil
}

type countJob struct {
	col    string
	filter bson.M
	dst    *int64
}
