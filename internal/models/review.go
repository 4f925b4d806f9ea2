package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AnimeID     string             `json:"animeId" bson:"animeId"`
	AnimeTitle  string             `json:"animeTitle,omitempty" bson:"animeTitle,omitempty"`
	Rating      int                `json:"rating" bson:"rating"`
	Title       string             `json:"title,omitempty" bson:"title,omitempty"`
	Content     string             `json:"content" bson:"content"`
	HasSpoilers bool               `json:"hasSpoilers" bson:"hasSpoilers"`
	Author      `bson:",inline"`
	Likes       LikeSet   `json:"likes" bson:"likes"`
	IsEdited    bool      `json:"isEdited" bson:"isEdited"`
	IsDeleted   bool      `json:"-" bson:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type ReviewFilter struct {
	AnimeID string
	UserID  *primitive.ObjectID
	Sort    string // recent|helpful|rating
	Limit   int
	Offset  int
}
