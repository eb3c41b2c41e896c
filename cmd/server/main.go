package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/gmalla/backend/docs"
	"github.com/gmalla/backend/internal/autoassign"
	"github.com/gmalla/backend/internal/config"
	"github.com/gmalla/backend/internal/engine"
	httpapi "github.com/gmalla/backend/internal/http"
	"github.com/gmalla/backend/internal/http/handlers"
	"github.com/gmalla/backend/internal/records"
	"github.com/gmalla/backend/internal/roster"
	"github.com/gmalla/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "gmalla-backend").Logger()

	ctx := context.Background()
	state, err := store.Open(ctx, cfg.StateDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open state store")
	}
	defer state.Close()

	httpTimeout := cfg.RequestTimeout
	sharedClient := &http.Client{Timeout: httpTimeout}

	var rec records.Client
	if cfg.RecordsURL == "" {
		rec = &records.Mock{}
		logger.Info().Msg("using mock record store")
	} else {
		rec = &records.HTTPClient{BaseURL: cfg.RecordsURL, APIKey: cfg.RecordsAPIKey, Client: sharedClient}
	}

	var ros roster.Client
	if cfg.RosterURL == "" {
		ros = &roster.Mock{}
		logger.Info().Msg("using mock roster")
	} else {
		ros = &roster.HTTPClient{BaseURL: cfg.RosterURL, Client: sharedClient}
	}

	var asg autoassign.Client
	if cfg.AssignURL == "" {
		asg = &autoassign.Mock{}
		logger.Info().Msg("using mock assignment service")
	} else {
		asg = &autoassign.HTTPClient{BaseURL: cfg.AssignURL}
	}

	if cfg.RosterUsername != "" {
		if err := ros.Login(ctx, cfg.RosterUsername, cfg.RosterPassword); err != nil {
			logger.Warn().Err(err).Msg("roster login failed, continuing unauthenticated")
		}
	}

	strictness := engine.ParseStrictness(cfg.MatchStrictness)
	eng := engine.New(rec, ros, asg, state, strictness, logger)
	eng.RestoreFilter(ctx)
	if err := eng.Reload(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial reload failed, starting with empty state")
	}

	h := &handlers.Handler{
		Engine:    eng,
		Records:   rec,
		Roster:    ros,
		State:     state,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}
	router := httpapi.Router(h, logger, cfg.Env, cfg.CORSAllowed)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
