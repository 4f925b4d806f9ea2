package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleSubscription struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	AnimeID    string             `json:"animeId" bson:"animeId"`
	AnimeTitle string             `json:"animeTitle,omitempty" bson:"animeTitle,omitempty"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	AiringDay  string             `json:"airingDay,omitempty" bson:"airingDay,omitempty"`
	AiringTime string             `json:"airingTime,omitempty" bson:"airingTime,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
