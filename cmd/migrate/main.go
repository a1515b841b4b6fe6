package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Uso: migrate [-down]
func main() {
	down := flag.Bool("down", false, "revierte todas las migraciones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	if err := run(cfg.DB, log, *down); err != nil {
		log.Error().Err(err).Msg("migración fallida")
		os.Exit(1)
	}
}

func run(dbCfg config.DBConfig, log *logger.Logger, down bool) error {
	pool, err := postgres.NewPool(context.Background(), dbCfg)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	migrator, err := postgres.NewMigrator(pool, log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if down {
		return migrator.Down()
	}
	return migrator.Up()
}
