package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/reelhouse/reelhouse/internal/api"
	"github.com/reelhouse/reelhouse/internal/cache"
	"github.com/reelhouse/reelhouse/internal/content"
	"github.com/reelhouse/reelhouse/internal/database"
	"github.com/reelhouse/reelhouse/internal/geoip"
	"github.com/reelhouse/reelhouse/internal/server"
	"github.com/reelhouse/reelhouse/internal/session"
	"github.com/reelhouse/reelhouse/internal/storage"
	"github.com/reelhouse/reelhouse/internal/store"
)

type config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	PlatformAPIURL string `envconfig:"PLATFORM_API_URL" required:"true"`
	PlatformAPIKey string `envconfig:"PLATFORM_API_KEY" required:"true"`

	CacheStaleAfter time.Duration `envconfig:"CACHE_STALE_AFTER" default:"5m"`

	S3Endpoint       string `envconfig:"S3_ENDPOINT" default:"http://localhost:3900"`
	S3PublicEndpoint string `envconfig:"S3_PUBLIC_ENDPOINT"`
	S3Bucket         string `envconfig:"S3_BUCKET" default:"reelhouse"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
	S3Region         string `envconfig:"S3_REGION" default:"eu-central-1"`
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	GeoIPDBPath string `envconfig:"GEOIP_DB_PATH"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")

	thumbs, err := storage.New(ctx, storage.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		Bucket:         cfg.S3Bucket,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Region:         cfg.S3Region,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if err := thumbs.EnsureBucket(ctx); err != nil {
		log.Fatalf("storage bucket check failed: %v", err)
	}
	log.Println("storage bucket ready")

	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		log.Fatalf("geoip initialization failed: %v", err)
	}
	defer geo.Close()

	platform := api.New(cfg.PlatformAPIURL, cfg.PlatformAPIKey)
	c := cache.New(cfg.CacheStaleAfter)

	srv := server.New(server.Config{
		Auth:      session.NewManager(platform),
		Accounts:  platform,
		Tokens:    session.NewTokens(db.Pool, cfg.JWTSecret, strings.HasPrefix(cfg.BaseURL, "https://")),
		Videos:    content.NewVideos(platform, c),
		Playlists: content.NewPlaylists(platform, c),
		Comments:  content.NewComments(platform, c),
		Users:     content.NewUsers(platform, c),
		Feedback:  content.NewFeedback(platform),
		Watch:     content.NewWatch(platform, geo),
		Shares:    content.NewShares(platform, c),
		Store:     store.New(db.Pool),
		Storage:   thumbs,
		Pinger:    db,
		BaseURL:   cfg.BaseURL,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("reelhouse listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}
