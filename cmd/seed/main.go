// Package main provides a CLI tool for seeding the database with reference data.
package main

import (
	"context"
	"fmt"
	"os"

	"coolstore/internal/config"
	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
	"coolstore/internal/infrastructure/storage/postgres/cooling_repo"
	"coolstore/pkg/logger"
)

var demoSampleKinds = []cooling.SampleKind{
	{ID: 1, Text: "Blood", ValidNoOfDays: 30},
	{ID: 2, Text: "Urine", ValidNoOfDays: 7},
	{ID: 3, Text: "Plasma", ValidNoOfDays: 60},
	{ID: 4, Text: "Serum", ValidNoOfDays: 14},
	{ID: 5, Text: "Tissue", ValidNoOfDays: 90},
}

var demoTrays = []cooling.Tray{
	{ID: 1, Capacity: 20},
	{ID: 2, Capacity: 20},
	{ID: 3, Capacity: 50},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Service:     "coolstore-seed",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.ApplicationName = "coolstore-seed"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool, postgres.DefaultTxOptions())

	if err := postgres.Migrate(ctx, txManager); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	inserted, err := cooling_repo.NewSeeder(txManager).Seed(ctx, demoSampleKinds, demoTrays)
	if err != nil {
		log.Fatalw("failed to seed reference data", "error", err)
	}

	log.Infow("seeding completed successfully",
		"rows_inserted", inserted,
		"sample_kinds", len(demoSampleKinds),
		"trays", len(demoTrays),
	)
}
