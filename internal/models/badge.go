package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Badge struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RoleID      string             `json:"roleId" bson:"roleId"`
	Name        string             `json:"name" bson:"name"`
	Icon        string             `json:"icon" bson:"icon"`
	Color       string             `json:"color" bson:"color"`
	BgColor     string             `json:"bgColor" bson:"bgColor"`
	BorderColor string             `json:"borderColor" bson:"borderColor"`
	Order       int                `json:"order" bson:"order"`
	IsSystem    bool               `json:"isSystem" bson:"isSystem"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SystemBadges are seeded on startup and cannot be deleted.
func SystemBadges() []Badge {
	return []Badge{
		{RoleID: "admin", Name: "Admin", Icon: "shield", Color: "text-red-400", BgColor: "bg-red-500/20", BorderColor: "border-red-500/40", Order: 0},
		{RoleID: "moderator", Name: "Moderator", Icon: "gavel", Color: "text-purple-400", BgColor: "bg-purple-500/20", BorderColor: "border-purple-500/40", Order: 1},
		{RoleID: "vip", Name: "VIP", Icon: "crown", Color: "text-yellow-400", BgColor: "bg-yellow-500/20", BorderColor: "border-yellow-500/40", Order: 2},
		{RoleID: "veteran", Name: "Veteran", Icon: "star", Color: "text-blue-400", BgColor: "bg-blue-500/20", BorderColor: "border-blue-500/40", Order: 3},
		{RoleID: DefaultCommunityRole, Name: "Member", Icon: "user", Color: "text-gray-300", BgColor: "bg-gray-500/20", BorderColor: "border-gray-500/40", Order: 10},
	}
}
