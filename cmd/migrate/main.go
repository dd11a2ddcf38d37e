package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"tikaparse/internal/config"
	"tikaparse/internal/logging"
)

const usage = "Usage: migrate [up|down|steps N|version]"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.Setup(cfg.Log)

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	source := os.Getenv("TIKAPARSE_MIGRATIONS_SOURCE")
	if source == "" {
		source = "file://db/migrations"
	}

	m, err := migrate.New(source, cfg.DB.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create migrate instance")
	}
	defer m.Close()

	cmd := os.Args[1]
	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("migration up failed")
		}
		logger.Info().Msg("migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("migration down failed")
		}
		logger.Info().Msg("migrations reverted successfully")

	case "steps":
		if len(os.Args) < 3 {
			logger.Fatal().Msg("steps requires a number argument")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid steps argument")
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("migration steps failed")
		}
		logger.Info().Int("steps", n).Msg("applied migration steps")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to get version")
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}
