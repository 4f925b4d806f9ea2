package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCommunityRole = "member"

type UserDoc struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	PasswordHash  string             `json:"-" bson:"passwordHash"`
	Avatar        string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio           string             `json:"bio,omitempty" bson:"bio,omitempty"`
	IsAdmin       bool               `json:"isAdmin" bson:"isAdmin"`
	IsBanned      bool               `json:"isBanned" bson:"isBanned"`
	BannedReason  string             `json:"bannedReason,omitempty" bson:"bannedReason,omitempty"`
	BannedAt      *time.Time         `json:"bannedAt,omitempty" bson:"bannedAt,omitempty"`
	CommunityRole string             `json:"communityRole" bson:"communityRole"`
	LastLoginAt   *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Author is the denormalized snapshot of a user stored on content at creation time.
type Author struct {
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	UserName   string             `json:"userName" bson:"userName"`
	UserAvatar string             `json:"userAvatar,omitempty" bson:"userAvatar,omitempty"`
	UserRole   string             `json:"userRole" bson:"userRole"`
}

// Snapshot builds the Author block for content written by u. Admins show as
// "admin" regardless of their community role.
func (u *UserDoc) Snapshot() Author {
	role := u.CommunityRole
	if role == "" {
		role = DefaultCommunityRole
	}
	if u.IsAdmin {
		role = "admin"
	}
	return Author{
		UserID:     u.ID,
		UserName:   u.Name,
		UserAvatar: u.Avatar,
		UserRole:   role,
	}
}

// UserFilter drives the admin user listing.
type UserFilter struct {
	Query  string
	Status string // all|banned|admin
	Limit  int
	Offset int
}
