package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline-backend/internal/catalog"
	"github.com/counterline/counterline-backend/internal/clients"
	"github.com/counterline/counterline-backend/pkg/config"
	"github.com/counterline/counterline-backend/pkg/db"
	"github.com/counterline/counterline-backend/pkg/logger"
)

// offlineSessions refuses logins; seeding only registers the client.
type offlineSessions struct{}

func (offlineSessions) Start(context.Context, string, uuid.UUID) error {
	return errors.New("sessions are unavailable while seeding")
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	file := flag.String("file", "seed.yaml", "path to the menu seed file")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "file": *file})

	seed, err := catalog.LoadSeed(*file)
	requireResource(ctx, logg, "seed file", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if seed.Client != nil {
		svc, err := clients.NewService(clients.ServiceParams{
			Repo:           clients.NewRepository(dbClient.DB()),
			SessionManager: offlineSessions{},
			JWTConfig:      cfg.JWT,
			PasswordConfig: cfg.Password,
		})
		requireResource(ctx, logg, "clients service", err)
		if err := seedClient(ctx, svc, seed.Client); err != nil {
			if !errors.Is(err, clients.ErrClientRegistered) {
				requireResource(ctx, logg, "client seed", err)
			}
			logg.Info(ctx, "client already registered, skipping")
		} else {
			logg.Info(ctx, "client registered")
		}
	}

	report, err := catalog.ApplySeed(ctx, dbClient, catalog.NewRepository(dbClient.DB()), seed)
	requireResource(ctx, logg, "catalog seed", err)

	ctx = logg.WithFields(ctx, map[string]any{
		"categories_created": report.CategoriesCreated,
		"items_created":      report.ItemsCreated,
		"items_skipped":      report.ItemsSkipped,
	})
	logg.Info(ctx, "seed applied")
}

func seedClient(ctx context.Context, svc clients.Service, sc *catalog.SeedClient) error {
	fee := decimal.Zero
	if sc.ConvenienceFee != "" {
		parsed, err := decimal.NewFromString(sc.ConvenienceFee)
		if err != nil {
			return fmt.Errorf("client convenienceFee: %w", err)
		}
		fee = parsed
	}
	_, err := svc.Register(ctx, clients.RegisterInput{
		BusinessName:   sc.BusinessName,
		UserName:       sc.UserName,
		Password:       sc.Password,
		Pin:            sc.Pin,
		ConvenienceFee: fee,
	})
	return err
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
