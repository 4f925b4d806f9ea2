package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxWatchHistory   = 100
	MaxLocalNotices   = 50
	MaxInteractionIDs = 1000
)

type WatchHistoryEntry struct {
	AnimeID       string    `json:"animeId" bson:"animeId" validate:"required,max=200"`
	EpisodeNumber int       `json:"episodeNumber" bson:"episodeNumber" validate:"gte=0"`
	Title         string    `json:"title,omitempty" bson:"title,omitempty" validate:"max=300"`
	Image         string    `json:"image,omitempty" bson:"image,omitempty" validate:"max=1000"`
	WatchedAt     time.Time `json:"watchedAt" bson:"watchedAt"`
}

// LocalNotice is a client-side notice the SPA keeps alongside its state.
type LocalNotice struct {
	ID        string    `json:"id" bson:"id" validate:"required,max=100"`
	Message   string    `json:"message" bson:"message" validate:"required,max=500"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Settings struct {
	Theme                string `json:"theme" bson:"theme" validate:"oneof=dark light system"`
	Autoplay             bool   `json:"autoplay" bson:"autoplay"`
	AutoNext             bool   `json:"autoNext" bson:"autoNext"`
	SkipIntro            bool   `json:"skipIntro" bson:"skipIntro"`
	DefaultQuality       string `json:"defaultQuality" bson:"defaultQuality" validate:"oneof=auto 360p 480p 720p 1080p"`
	SubtitleLanguage     string `json:"subtitleLanguage" bson:"subtitleLanguage" validate:"max=20"`
	NotificationsEnabled bool   `json:"notificationsEnabled" bson:"notificationsEnabled"`
	EmailNotifications   bool   `json:"emailNotifications" bson:"emailNotifications"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:                "dark",
		Autoplay:             true,
		AutoNext:             true,
		DefaultQuality:       "auto",
		SubtitleLanguage:     "en",
		NotificationsEnabled: true,
	}
}

// AnimeInteraction is the single per-user document behind the SPA's local state.
type AnimeInteraction struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	Bookmarks       []string            `json:"bookmarks" bson:"bookmarks"`
	Watchlist       []string            `json:"watchlist" bson:"watchlist"`
	WatchHistory    []WatchHistoryEntry `json:"watchHistory" bson:"watchHistory"`
	Ratings         map[string]int      `json:"ratings" bson:"ratings"`
	SubscribedAnime []string            `json:"subscribedAnime" bson:"subscribedAnime"`
	Notifications   []LocalNotice       `json:"notifications" bson:"notifications"`
	Settings        *Settings           `json:"settings,omitempty" bson:"settings,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// NewAnimeInteraction returns an empty aggregate with non-nil collections.
func NewAnimeInteraction(userID primitive.ObjectID) *AnimeInteraction {
	return &AnimeInteraction{
		UserID:          userID,
		Bookmarks:       []string{},
		Watchlist:       []string{},
		WatchHistory:    []WatchHistoryEntry{},
		Ratings:         map[string]int{},
		SubscribedAnime: []string{},
		Notifications:   []LocalNotice{},
	}
}

// Normalize fills nil collections so JSON always carries arrays and objects.
func (a *AnimeInteraction) Normalize() {
	if a.Bookmarks == nil {
		a.Bookmarks = []string{}
	}
	if a.Watchlist == nil {
		a.Watchlist = []string{}
	}
	if a.WatchHistory == nil {
		a.WatchHistory = []WatchHistoryEntry{}
	}
	if a.Ratings == nil {
		a.Ratings = map[string]int{}
	}
	if a.SubscribedAnime == nil {
		a.SubscribedAnime = []string{}
	}
	if a.Notifications == nil {
		a.Notifications = []LocalNotice{}
	}
}

// EffectiveSettings returns stored settings or the defaults.
func (a *AnimeInteraction) EffectiveSettings() Settings {
	if a.Settings == nil {
		return DefaultSettings()
	}
	return *a.Settings
}
