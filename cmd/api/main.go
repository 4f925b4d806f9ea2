package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "aniwatch-api/docs" // swagger docs

	"aniwatch-api/internal/cache"
	"aniwatch-api/internal/config"
	"aniwatch-api/internal/db"
	"aniwatch-api/internal/handler"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/moderation"
	"aniwatch-api/internal/repository"
	"aniwatch-api/internal/service"
	"aniwatch-api/internal/watchparty"
)

// @title AniWatch API
// @version 1.0
// @description Community, progress and watch-party backend for the AniWatch SPA
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("[api] config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mongo and redis
	if err := db.InitMongo(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("[api] mongo")
	}
	if err := db.EnsureIndexes(ctx, db.DB()); err != nil {
		logging.Fatal().Err(err).Msg("[api] indexes")
	}
	store, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("[api] redis")
	}

	// repos
	d := db.DB()
	userRepo := repository.NewUserRepository(d)
	commentRepo := repository.NewCommentRepository(d)
	discussionRepo := repository.NewDiscussionRepository(d)
	replyRepo := repository.NewDiscussionReplyRepository(d)
	reviewRepo := repository.NewReviewRepository(d)
	animeStatsRepo := repository.NewAnimeStatsRepository(d)
	badgeRepo := repository.NewBadgeRepository(d)
	notificationRepo := repository.NewNotificationRepository(d)
	scheduleRepo := repository.NewScheduleRepository(d)
	progressRepo := repository.NewWatchProgressRepository(d)
	interactionRepo := repository.NewInteractionRepository(d)
	bannedWordRepo := repository.NewBannedWordRepository(d)
	statsRepo := repository.NewStatsRepository(d)

	// services
	filter := moderation.NewFilter(nil)
	guard := service.NewContentGuard(filter)
	notifier := service.NewNotificationService(notificationRepo)
	badgeSvc := service.NewBadgeService(badgeRepo, store)
	authSvc := service.NewAuthService(userRepo, guard, cfg.JWTSecret, cfg.JWTTTL)
	interactionSvc := service.NewInteractionService(interactionRepo)
	adminSvc := service.NewAdminService(userRepo, badgeSvc, bannedWordRepo, filter, statsRepo, scheduleRepo, notifier, store)

	if err := badgeSvc.Seed(ctx); err != nil {
		logging.Fatal().Err(err).Msg("[api] seed badges")
	}
	if err := adminSvc.LoadBannedWords(ctx, cfg.BannedWords); err != nil {
		logging.Fatal().Err(err).Msg("[api] banned words")
	}
	if cfg.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail); err != nil {
			logging.Warn().Err(err).Str("email", cfg.AdminEmail).Msg("[api] admin bootstrap skipped")
		}
	}

	hub := watchparty.NewHub(64)
	router := handler.NewRouter(handler.Services{
		Auth:          authSvc,
		Comments:      service.NewCommentService(commentRepo, userRepo, animeStatsRepo, guard, notifier),
		Discussions:   service.NewDiscussionService(discussionRepo, replyRepo, userRepo, guard, notifier),
		Reviews:       service.NewReviewService(reviewRepo, animeStatsRepo, userRepo, guard, store),
		Badges:        badgeSvc,
		Notifications: notifier,
		Progress:      service.NewWatchProgressService(progressRepo),
		Schedule:      service.NewScheduleService(scheduleRepo),
		Interactions:  interactionSvc,
		Settings:      service.NewSettingsService(interactionSvc),
		Admin:         adminSvc,
		Hub:           hub,
		Ping: func(ctx context.Context) error {
			return d.Client().Ping(ctx, nil)
		},
	}, handler.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("[api] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("[api] serve")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("[api] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// hijacked websocket connections are not tracked by Shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[api] shutdown")
	}
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
	if err := db.Close(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[api] mongo disconnect")
	}
}
