package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/config"
	"nailsxlauren/internal/database"
	"nailsxlauren/internal/logging"
	"nailsxlauren/internal/server"
	"nailsxlauren/internal/services"
	"nailsxlauren/internal/util"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	log := *logger

	log.Info().
		Bool("debug", cfg.App.Debug).
		Str("host", cfg.App.Host).
		Str("port", cfg.App.Port).
		Str("session_mode", cfg.Session.Mode).
		Str("mail_provider", cfg.Mail.Provider).
		Msg("starting")

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Info().Str("version", cat.Version).Int("services", len(cat.Services)).Msg("price catalog loaded")

	mailer, err := services.NewMailer(&cfg.Mail, logging.Component(logger, "mail"))
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	db, err := database.Open(cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		// Intake keeps working without storage; health reports degraded.
		log.Error().Err(err).Msg("database unavailable, bookings will not be stored")
		db = nil
	}
	defer func() {
		if db == nil {
			return
		}
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("error closing database")
		}
	}()

	deps := buildDeps(cfg, db, cat, mailer, logger)
	srv := server.New(cfg, deps, logging.Component(logger, "http"))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return err
		}
		return nil
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("starting graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

func buildDeps(cfg *config.Config, db *gorm.DB, cat *catalog.Catalog, mailer services.Mailer, logger *zerolog.Logger) server.Deps {
	var (
		bookings services.BookingStore = database.OfflineBookings{}
		users    services.UserStore
		ping     func(ctx context.Context) error
	)
	if db != nil {
		bookings = database.NewBookingRepository(db)
		users = database.NewUserRepository(db)
		ping = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }
	}

	tokens := util.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TTL)

	return server.Deps{
		Bookings: services.NewBookingService(bookings, mailer, cat, cfg.Mail.OperatorEmail, logging.Component(logger, "booking")),
		Admin:    services.NewBookingAdminService(bookings, logging.Component(logger, "admin")),
		Auth:     services.NewAuthService(users, tokens, cfg.Session, logging.Component(logger, "auth")),
		Health:   services.NewHealthService(cfg.App.Name, ping, logging.Component(logger, "health")),
		Catalog:  cat,
	}
}
