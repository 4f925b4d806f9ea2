package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"aniwatch-api/internal/config"
	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/sitemap"
)

func main() {
	out := flag.String("out", "public/sitemap.xml", "output file")
	maxPages := flag.Int("pages", 20, "maximum catalogue pages to fetch (0 = all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("[sitemap] config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := sitemap.NewClient(sitemap.ClientConfig{
		Endpoint:  cfg.AniListURL,
		MaxPages:  *maxPages,
		BaseDelay: 2 * time.Second,
	})
	ids, err := client.FetchAll(ctx)
	if err != nil {
		// a partial catalogue still yields a usable sitemap
		if len(ids) == 0 {
			logging.Fatal().Err(err).Msg("[sitemap] fetch catalogue")
		}
		logging.Warn().Err(err).Int("ids", len(ids)).Msg("[sitemap] catalogue incomplete, writing what was fetched")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logging.Fatal().Err(err).Msg("[sitemap] create output dir")
	}
	f, err := os.Create(*out)
	if err != nil {
		logging.Fatal().Err(err).Msg("[sitemap] create output")
	}
	set := sitemap.Build(cfg.SiteURL, ids, time.Now())
	if err := sitemap.Write(f, set); err != nil {
		_ = f.Close()
		logging.Fatal().Err(err).Msg("[sitemap] write")
	}
	if err := f.Close(); err != nil {
		logging.Fatal().Err(err).Msg("[sitemap] close output")
	}
	logging.Info().Str("file", *out).Int("urls", len(set.URLs)).Msg("[sitemap] written")
}
