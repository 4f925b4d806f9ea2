package models

import "time"

// RatingStats is moved by increments on Sum and Count. Average is derived
// from them on every write.
type RatingStats struct {
	Sum         int        `json:"-" bson:"sum"`
	Average     float64    `json:"average" bson:"average"`
	Count       int        `json:"count" bson:"count"`
	LastRatedAt *time.Time `json:"lastRatedAt,omitempty" bson:"lastRatedAt,omitempty"`
}

type AnimeStats struct {
	AnimeID      string      `json:"animeId" bson:"animeId"`
	AnimeTitle   string      `json:"animeTitle,omitempty" bson:"animeTitle,omitempty"`
	RatingStats  RatingStats `json:"ratingStats" bson:"ratingStats"`
	CommentCount int         `json:"commentCount" bson:"commentCount"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updatedAt"`
}
