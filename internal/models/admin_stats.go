package models

import "time"

type AdminStats struct {
	TotalUsers          int64     `json:"totalUsers"`
	BannedUsers         int64     `json:"bannedUsers"`
	AdminUsers          int64     `json:"adminUsers"`
	NewUsersLast7Days   int64     `json:"newUsersLast7Days"`
	Comments            int64     `json:"comments"`
	Discussions         int64     `json:"discussions"`
	DiscussionReplies   int64     `json:"discussionReplies"`
	Reviews             int64     `json:"reviews"`
	ScheduleSubscribers int64     `json:"scheduleSubscriptions"`
	GeneratedAt         time.Time `json:"generatedAt"`
}
