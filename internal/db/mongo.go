package db

import (
	"context"
	"fmt"
	"time"

	"aniwatch-api/internal/config"
	"aniwatch-api/internal/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ColUsers                 = "users"
	ColComments              = "comments"
	ColDiscussions           = "discussions"
	ColDiscussionReplies     = "discussion_replies"
	ColReviews               = "reviews"
	ColAnimeStats            = "anime_stats"
	ColBadges                = "badges"
	ColNotifications         = "notifications"
	ColScheduleSubscriptions = "schedule_subscriptions"
	ColWatchProgress         = "watch_progress"
	ColUserInteractions      = "user_interactions"
	ColBannedWords           = "banned_words"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

// InitMongo connects, pings and stores the database handle used by the repositories.
func InitMongo(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	logging.Info().Str("db", cfg.MongoDB).Msg("[mongo] connected")
	return nil
}

func DB() *mongo.Database {
	return mongoDB
}

func Close(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	return mongoClient.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness
// and listing order. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, d *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		ColUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		ColComments: {
			{Keys: bson.D{{Key: "animeId", Value: 1}, {Key: "episodeNumber", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "parentId", Value: 1}}},
		},
		ColDiscussions: {
			{Keys: bson.D{{Key: "isPinned", Value: -1}, {Key: "lastActivityAt", Value: -1}}},
			{Keys: bson.D{{Key: "animeId", Value: 1}}},
		},
		ColDiscussionReplies: {
			{Keys: bson.D{{Key: "discussionId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		ColReviews: {
			{Keys: bson.D{{Key: "animeId", Value: 1}, {Key: "createdAt", Value: -1}}},
			// one live review per user and anime; soft-deleted ones free the slot
			{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animeId", Value: 1}},
				Options: options.Index().
					SetName("userId_animeId_live").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"isDeleted": false}),
			},
		},
		ColAnimeStats: {
			{Keys: bson.D{{Key: "animeId", Value: 1}}, Options: unique},
		},
		ColBadges: {
			{Keys: bson.D{{Key: "roleId", Value: 1}}, Options: unique},
		},
		ColNotifications: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ColScheduleSubscriptions: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animeId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "animeId", Value: 1}}},
		},
		ColWatchProgress: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "animeId", Value: 1}, {Key: "episodeNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
		ColUserInteractions: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
		ColBannedWords: {
			{Keys: bson.D{{Key: "word", Value: 1}}, Options: unique},
		},
	}

	for col, models := range specs {
		if _, err := d.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}
