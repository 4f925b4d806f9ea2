package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var DiscussionCategories = []string{"general", "episode", "theory", "recommendation", "news", "review"}

type Discussion struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	Content        string             `json:"content" bson:"content"`
	Category       string             `json:"category" bson:"category"`
	AnimeID        string             `json:"animeId,omitempty" bson:"animeId,omitempty"`
	AnimeTitle     string             `json:"animeTitle,omitempty" bson:"animeTitle,omitempty"`
	EpisodeNumber  *int               `json:"episodeNumber,omitempty" bson:"episodeNumber,omitempty"`
	Tags           []string           `json:"tags" bson:"tags"`
	Author         `bson:",inline"`
	Likes          LikeSet   `json:"likes" bson:"likes"`
	Views          int       `json:"views" bson:"views"`
	ReplyCount     int       `json:"replyCount" bson:"replyCount"`
	IsPinned       bool      `json:"isPinned" bson:"isPinned"`
	IsLocked       bool      `json:"isLocked" bson:"isLocked"`
	IsEdited       bool      `json:"isEdited" bson:"isEdited"`
	IsDeleted      bool      `json:"-" bson:"isDeleted"`
	LastActivityAt time.Time `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

type DiscussionReply struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DiscussionID primitive.ObjectID `json:"discussionId" bson:"discussionId"`
	Author       `bson:",inline"`
	Content      string    `json:"content" bson:"content"`
	Likes        LikeSet   `json:"likes" bson:"likes"`
	IsEdited     bool      `json:"isEdited" bson:"isEdited"`
	IsDeleted    bool      `json:"-" bson:"isDeleted"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

type DiscussionFilter struct {
	AnimeID  string
	Category string
	Query    string
	Sort     string // latest|popular|active
	Limit    int
	Offset   int
}
