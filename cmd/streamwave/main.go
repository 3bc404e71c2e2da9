package main

import (
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"streamwave/config"
	"streamwave/handlers"
	"streamwave/internal/store"
	authsvc "streamwave/services/auth"
	mediasvc "streamwave/services/media"
	playlistsvc "streamwave/services/playlists"
	recommendsvc "streamwave/services/recommend"
	"streamwave/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg.Log)

	fs, err := store.NewOsFs(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("failed to prepare data directory: %v", err)
	}

	usersStore, err := store.New(fs, store.Config{Path: cfg.UsersPath()})
	if err != nil {
		log.Fatalf("failed to open users store: %v", err)
	}
	mediaStore, err := store.New(fs, store.Config{Path: cfg.MediaPath()})
	if err != nil {
		log.Fatalf("failed to open media store: %v", err)
	}
	playlistStore, err := store.New(fs, store.Config{Path: cfg.PlaylistsPath()})
	if err != nil {
		log.Fatalf("failed to open playlists store: %v", err)
	}

	tokens, err := authsvc.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("failed to build token manager: %v", err)
	}

	auth := authsvc.NewService(usersStore, tokens, cfg.Auth.BcryptCost)
	media := mediasvc.NewService(mediaStore)
	playlists := playlistsvc.NewService(playlistStore)
	recommend := recommendsvc.NewService(media, playlists, 0)

	authHandler := handlers.NewAuthHandler(auth)
	mediaHandler := handlers.NewMediaHandler(media, auth, playlists)
	playlistHandler := handlers.NewPlaylistHandler(playlists, auth)
	recommendHandler := handlers.NewRecommendHandler(recommend, auth)
	adminHandler := handlers.NewAdminHandler(auth, media)

	r := utils.NewRouter()

	r.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/token", authHandler.Token).Methods(http.MethodPost)
	r.HandleFunc("/users/me", authHandler.Me).Methods(http.MethodGet)
	r.HandleFunc("/users/me/premium", authHandler.UpgradePremium).Methods(http.MethodPost)

	r.HandleFunc("/users/me/items", mediaHandler.OwnItems).Methods(http.MethodGet)
	r.HandleFunc("/media/search/{query}", mediaHandler.Search).Methods(http.MethodGet)
	r.HandleFunc("/media/songs", mediaHandler.Songs).Methods(http.MethodGet)
	r.HandleFunc("/media/podcasts", mediaHandler.Podcasts).Methods(http.MethodGet)
	r.HandleFunc("/media/add_item", mediaHandler.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/media/{id:[0-9]+}", mediaHandler.Stream).Methods(http.MethodGet)

	r.HandleFunc("/users/me/playlists", playlistHandler.ListOwn).Methods(http.MethodGet)
	r.HandleFunc("/users/me/playlists", playlistHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}", playlistHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}/songs/{songID:[0-9]+}", playlistHandler.AddSong).Methods(http.MethodPost)
	r.HandleFunc("/users/me/playlists/{id:[0-9]+}/songs/{songID:[0-9]+}", playlistHandler.RemoveSong).Methods(http.MethodDelete)
	r.HandleFunc("/playlists/search/{query}", playlistHandler.Search).Methods(http.MethodGet)

	r.HandleFunc("/recommendations", recommendHandler.Recommend).Methods(http.MethodGet)

	r.HandleFunc("/admin/users", adminHandler.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id:[0-9]+}", adminHandler.UpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/admin/users/{id:[0-9]+}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/admin/users/{id:[0-9]+}/disable", adminHandler.SetDisabled(true)).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id:[0-9]+}/enable", adminHandler.SetDisabled(false)).Methods(http.MethodPost)
	r.HandleFunc("/admin/users/{id:[0-9]+}/premium", adminHandler.SetPremium).Methods(http.MethodPost)
	r.HandleFunc("/admin/media/{id:[0-9]+}", adminHandler.DeleteMedia).Methods(http.MethodDelete)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("streamwave listening", "addr", cfg.Server.ListenAddr, "data_dir", cfg.Data.Dir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}
