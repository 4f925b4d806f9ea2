package handler

import (
	"net/http"
	"time"

	"aniwatch-api/internal/service"
	"aniwatch-api/internal/watchparty"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services is everything the router dispatches to.
type Services struct {
	Auth          *service.AuthService
	Comments      *service.CommentService
	Discussions   *service.DiscussionService
	Reviews       *service.ReviewService
	Badges        *service.BadgeService
	Notifications *service.NotificationService
	Progress      *service.WatchProgressService
	Schedule      *service.ScheduleService
	Interactions  *service.InteractionService
	Settings      *service.SettingsService
	Admin         *service.AdminService
	Hub           *watchparty.Hub
	// Ping backs /health. Nil skips the database check.
	Ping Pinger
}

type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter mounts every route on a chi mux.
func NewRouter(s Services, cfg RouterConfig) http.Handler {
	authH := NewAuthHandler(s.Auth)
	commentH := NewCommentHandler(s.Comments)
	discussionH := NewDiscussionHandler(s.Discussions)
	reviewH := NewReviewHandler(s.Reviews)
	badgeH := NewBadgeHandler(s.Badges)
	notificationH := NewNotificationHandler(s.Notifications)
	progressH := NewProgressHandler(s.Progress)
	scheduleH := NewScheduleHandler(s.Schedule)
	interactionH := NewInteractionHandler(s.Interactions, s.Settings)
	adminH := NewAdminHandler(s.Admin)
	partyH := NewWatchPartyHandler(s.Hub, cfg.CORSOrigins)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", Health(s.Ping))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/ws/watch-party/{roomId}", partyH.Serve)

	authMw := JWTAuth(s.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Get("/me", authH.Me)
				r.Put("/profile", authH.UpdateProfile)
				r.Put("/password", authH.ChangePassword)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/anime/{animeId}", commentH.ListByAnime)
			r.Get("/{id}/replies", commentH.Replies)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/", commentH.Create)
				r.Put("/{id}", commentH.Update)
				r.Delete("/{id}", commentH.Delete)
				r.Post("/{id}/like", commentH.ToggleLike)
			})
		})

		r.Route("/discussions", func(r chi.Router) {
			r.Get("/", discussionH.List)
			r.Get("/{id}", discussionH.Get)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/", discussionH.Create)
				r.Put("/{id}", discussionH.Update)
				r.Delete("/{id}", discussionH.Delete)
				r.Post("/{id}/like", discussionH.ToggleLike)
				r.Post("/{id}/replies", discussionH.AddReply)
				r.Put("/{id}/replies/{replyId}", discussionH.UpdateReply)
				r.Delete("/{id}/replies/{replyId}", discussionH.DeleteReply)
				r.Post("/{id}/replies/{replyId}/like", discussionH.ToggleReplyLike)
				r.Group(func(r chi.Router) {
					r.Use(AdminOnly())
					r.Put("/{id}/pin", discussionH.SetPinned)
					r.Put("/{id}/lock", discussionH.SetLocked)
				})
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/anime/{animeId}", reviewH.ListByAnime)
			r.Get("/user/{userId}", reviewH.ListByUser)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/", reviewH.Create)
				r.Put("/{id}", reviewH.Update)
				r.Delete("/{id}", reviewH.Delete)
				r.Post("/{id}/like", reviewH.ToggleLike)
			})
		})

		r.Route("/anime", func(r chi.Router) {
			r.Get("/top", reviewH.Top)
			r.Get("/{animeId}/stats", reviewH.Stats)
		})

		r.Route("/badges", func(r chi.Router) {
			r.Get("/", badgeH.List)
			r.Group(func(r chi.Router) {
				r.Use(authMw, AdminOnly())
				r.Post("/", badgeH.Create)
				r.Put("/{id}", badgeH.Update)
				r.Delete("/{id}", badgeH.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationH.List)
				r.Get("/unread-count", notificationH.UnreadCount)
				r.Put("/read-all", notificationH.MarkAllRead)
				r.Put("/{id}/read", notificationH.MarkRead)
				r.Delete("/{id}", notificationH.Delete)
				r.Delete("/", notificationH.Clear)
			})

			r.Route("/watch-progress", func(r chi.Router) {
				r.Put("/", progressH.Save)
				r.Get("/", progressH.Recent)
				r.Get("/{animeId}", progressH.ByAnime)
				r.Get("/{animeId}/{episode}", progressH.Episode)
				r.Delete("/{animeId}", progressH.DeleteAnime)
			})

			r.Route("/schedule-subscriptions", func(r chi.Router) {
				r.Get("/", scheduleH.List)
				r.Post("/toggle", scheduleH.Toggle)
				r.Get("/{animeId}/status", scheduleH.Status)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", interactionH.GetSettings)
				r.Put("/", interactionH.UpdateSettings)
				r.Delete("/", interactionH.ResetSettings)
			})

			r.Route("/user-interactions", func(r chi.Router) {
				r.Get("/", interactionH.Get)
				r.Put("/", interactionH.Sync)
				r.Post("/bookmarks/{animeId}", interactionH.ToggleBookmark)
				r.Post("/watchlist/{animeId}", interactionH.ToggleWatchlist)
				r.Post("/subscriptions/{animeId}", interactionH.ToggleSubscription)
				r.Post("/history", interactionH.AddHistory)
				r.Delete("/history", interactionH.ClearHistory)
				r.Put("/ratings/{animeId}", interactionH.SetRating)
				r.Delete("/ratings/{animeId}", interactionH.DeleteRating)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(AdminOnly())
				r.Get("/users", adminH.ListUsers)
				r.Get("/users/{id}", adminH.GetUser)
				r.Put("/users/{id}/ban", adminH.Ban)
				r.Put("/users/{id}/unban", adminH.Unban)
				r.Put("/users/{id}/admin", adminH.SetAdmin)
				r.Put("/users/{id}/community-role", adminH.SetCommunityRole)
				r.Get("/stats", adminH.Stats)
				r.Get("/banned-words", adminH.BannedWords)
				r.Post("/banned-words", adminH.AddBannedWord)
				r.Delete("/banned-words/{word}", adminH.RemoveBannedWord)
				r.Post("/notifications/broadcast", adminH.Broadcast)
				r.Post("/notifications/episode", adminH.NotifyEpisode)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
