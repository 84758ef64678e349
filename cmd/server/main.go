package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhandler "presadmin/internal/auth/handler"
	authmetrics "presadmin/internal/auth/metrics"
	authservice "presadmin/internal/auth/service"
	"presadmin/internal/auth/token"
	"presadmin/internal/discord"
	"presadmin/internal/platform/config"
	"presadmin/internal/platform/httpserver"
	"presadmin/internal/platform/logger"
	platformmetrics "presadmin/internal/platform/metrics"
	"presadmin/internal/platform/sqlite"
	reviewhandler "presadmin/internal/review/handler"
	reviewmetrics "presadmin/internal/review/metrics"
	reviewservice "presadmin/internal/review/service"
	sqlitestore "presadmin/internal/review/store/sqlite"
	httptransport "presadmin/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer db.Close()

	discordClient := discord.NewClient(discord.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectURI,
		BotToken:     cfg.DiscordBotToken,
		APIURL:       cfg.DiscordAPIURL,
	})

	tokens := token.NewService(cfg.SecretKey, "presadmin")

	authSvc := authservice.New(discordClient, tokens, authservice.Config{
		GuildID:     cfg.GuildID,
		StaffRoleID: cfg.StaffRoleID,
		TokenTTL:    cfg.TokenTTL(),
	}, log, authmetrics.New())

	reviewSvc := reviewservice.New(sqlitestore.New(db), log, reviewmetrics.New())

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:        authhandler.New(authSvc, tokens, cfg.FrontendURL, log),
		Review:      reviewhandler.New(reviewSvc, log),
		Tokens:      tokens,
		Metrics:     platformmetrics.New(),
		FrontendURL: cfg.FrontendURL,
		Logger:      log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
