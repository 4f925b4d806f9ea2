package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionRatio is the watched fraction at which an episode counts as completed.
const CompletionRatio = 0.9

type WatchProgress struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	AnimeID       string             `json:"animeId" bson:"animeId"`
	EpisodeNumber int                `json:"episodeNumber" bson:"episodeNumber"`
	AnimeTitle    string             `json:"animeTitle,omitempty" bson:"animeTitle,omitempty"`
	EpisodeTitle  string             `json:"episodeTitle,omitempty" bson:"episodeTitle,omitempty"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	CurrentTime   float64            `json:"currentTime" bson:"currentTime"`
	Duration      float64            `json:"duration" bson:"duration"`
	Completed     bool               `json:"completed" bson:"completed"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Percent is the watched fraction in [0,1].
func (p *WatchProgress) Percent() float64 {
	if p.Duration <= 0 {
		return 0
	}
	f := p.CurrentTime / p.Duration
	if f > 1 {
		return 1
	}
	return f
}
