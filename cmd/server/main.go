package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/AnimationBenoit/mygrowverse/internal/assets"
	"github.com/AnimationBenoit/mygrowverse/internal/config"
	"github.com/AnimationBenoit/mygrowverse/internal/daymarker"
	"github.com/AnimationBenoit/mygrowverse/internal/httpapi"
	"github.com/AnimationBenoit/mygrowverse/internal/progress"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
	"github.com/AnimationBenoit/mygrowverse/internal/session"
	sharedauth "github.com/AnimationBenoit/mygrowverse/shared/auth"
	"github.com/AnimationBenoit/mygrowverse/shared/logging"
	sharedserver "github.com/AnimationBenoit/mygrowverse/shared/server"
)

const (
	serviceName   = "game-service"
	sweepInterval = time.Minute
)

var version = "dev"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName, cfg.LogLevel)

	bank, err := quizbank.Open(cfg.Game.QuizBankPath)
	if err != nil {
		panic(fmt.Errorf("quiz bank error: %w", err))
	}

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}

	var markers progress.DayMarkers
	var markerStore *daymarker.Store
	if cfg.Game.DayMarkerPath != "" {
		markerStore, err = daymarker.Open(cfg.Game.DayMarkerPath)
		if err != nil {
			panic(fmt.Errorf("day marker store error: %w", err))
		}
		markers = markerStore
	}

	loc, err := cfg.Game.Location()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	manager, err := session.NewManager(session.Config{
		Bank:        bank,
		Sync:        progress.NewSyncAdapter(repo, markers, bank, logger),
		Markers:     markers,
		Location:    loc,
		IdleTimeout: cfg.Game.SessionTimeout,
		Logger:      logger,
	})
	if err != nil {
		panic(fmt.Errorf("session manager error: %w", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     sharedauth.Mode(cfg.Auth.Mode),
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	resolver, closeResolver, err := newResolver(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("assets error: %w", err))
	}

	handler := httpapi.NewHandler(bank, manager, verifier, resolver, logger)
	router := sharedserver.NewRouter(serviceName, version, handler.RegisterRoutes)

	// No WriteTimeout: the event stream stays open for the whole session.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go manager.RunSweeper(sweepCtx, sweepInterval)

	cleanups := []sharedserver.Cleanup{
		func(context.Context) error {
			stopSweep()
			manager.Close()
			return nil
		},
		closeResolver,
		closeRepo,
	}
	if markerStore != nil {
		cleanups = append(cleanups, func(context.Context) error { return markerStore.Close() })
	}

	logger.Info("quiz bank loaded",
		slog.Int("levels", len(bank.Levels())),
		slog.Int("plants", len(bank.Plants())),
		slog.String("datastore", cfg.DataStore))

	if err := sharedserver.Run(ctx, srv, logger, cleanups...); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func clientOptions(cfg config.Config) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}

func newRepository(ctx context.Context, cfg config.Config) (progress.Repository, sharedserver.Cleanup, error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database, clientOptions(cfg)...)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return progress.NewFirestoreRepository(client), func(context.Context) error { return client.Close() }, nil
	case config.DataStoreMemory:
		return progress.NewMemoryRepository(), func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}
}

func newResolver(ctx context.Context, cfg config.Config) (assets.Resolver, sharedserver.Cleanup, error) {
	if cfg.Assets.Bucket == "" {
		return assets.NewStaticResolver(""), func(context.Context) error { return nil }, nil
	}
	resolver, err := assets.NewBucketResolver(ctx, cfg.Assets.Bucket, cfg.Assets.SignedURLTTL, clientOptions(cfg)...)
	if err != nil {
		return nil, nil, err
	}
	return resolver, func(context.Context) error { return resolver.Close() }, nil
}
