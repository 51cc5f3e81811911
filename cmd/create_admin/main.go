package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nailsxlauren/internal/config"
	"nailsxlauren/internal/database"
	"nailsxlauren/internal/util"

	"github.com/rs/zerolog"
)

const minPasswordLength = 8

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (falls back to ADMIN_PASSWORD)")
	disable := flag.Bool("disable", false, "deactivate the admin instead of creating it")
	flag.Parse()

	if err := run(strings.TrimSpace(*username), *password, *disable); err != nil {
		fmt.Fprintf(os.Stderr, "create_admin: %v\n", err)
		os.Exit(1)
	}
}

func run(username, password string, disable bool) error {
	// Only the database settings are needed here, so the full config
	// validation (session secret, mail provider) is skipped.
	cfg, err := config.Load()
	dbCfg := config.DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
	if err == nil {
		dbCfg = cfg.Database
		if password == "" {
			password = cfg.Session.AdminPassword
		}
	}
	if dbCfg.URL == "" {
		dbCfg.URL = "sqlite:///./nailsxlauren.db"
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if !disable && len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	db, err := database.Open(dbCfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := database.NewUserRepository(db)
	if disable {
		user, err := users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := users.SetActive(ctx, user.ID, false); err != nil {
			return fmt.Errorf("deactivate %s: %w", username, err)
		}
		log.Info().Str("username", user.Username).Uint("id", user.ID).Msg("admin deactivated")
		return nil
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, created, err := users.Upsert(ctx, username, hashed)
	if err != nil {
		return err
	}

	if created {
		log.Info().Str("username", user.Username).Uint("id", user.ID).Msg("admin user created")
	} else {
		log.Info().Str("username", user.Username).Uint("id", user.ID).Msg("admin password reset")
	}
	return nil
}
