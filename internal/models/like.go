package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// LikeSet is an array of user ids where each user appears at most once.
type LikeSet []primitive.ObjectID

func (s LikeSet) Has(id primitive.ObjectID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// LikeResult is returned by every like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
