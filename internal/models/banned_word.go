package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BannedWord struct {
	Word      string             `json:"word" bson:"word"`
	AddedBy   primitive.ObjectID `json:"addedBy,omitempty" bson:"addedBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
