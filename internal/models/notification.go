package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationReply        = "reply"
	NotificationCommentReply = "comment_reply"
	NotificationLike         = "like"
	NotificationEpisode      = "episode"
	NotificationSystem       = "system"
)

type Notification struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID  `json:"userId" bson:"userId"`
	Type         string              `json:"type" bson:"type"`
	ActorID      *primitive.ObjectID `json:"actorId,omitempty" bson:"actorId,omitempty"`
	ActorName    string              `json:"actorName,omitempty" bson:"actorName,omitempty"`
	AnimeID      string              `json:"animeId,omitempty" bson:"animeId,omitempty"`
	DiscussionID *primitive.ObjectID `json:"discussionId,omitempty" bson:"discussionId,omitempty"`
	CommentID    *primitive.ObjectID `json:"commentId,omitempty" bson:"commentId,omitempty"`
	Message      string              `json:"message" bson:"message"`
	Link         string              `json:"link,omitempty" bson:"link,omitempty"`
	IsRead       bool                `json:"isRead" bson:"isRead"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
}
