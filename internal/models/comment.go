package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	AnimeID       string              `json:"animeId" bson:"animeId"`
	EpisodeNumber *int                `json:"episodeNumber,omitempty" bson:"episodeNumber,omitempty"`
	ParentID      *primitive.ObjectID `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Author        `bson:",inline"`
	Content       string    `json:"content" bson:"content"`
	Likes         LikeSet   `json:"likes" bson:"likes"`
	IsEdited      bool      `json:"isEdited" bson:"isEdited"`
	IsDeleted     bool      `json:"-" bson:"isDeleted"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CommentFilter struct {
	AnimeID       string
	EpisodeNumber *int
	ParentID      *primitive.ObjectID
	// TopLevel restricts the listing to comments without a parent.
	TopLevel bool
	Limit    int
	Offset   int
}
