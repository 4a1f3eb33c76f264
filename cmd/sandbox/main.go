package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	fiberadapter "github.com/lborres/agromart/adapters/fiber"
	pgxadapter "github.com/lborres/agromart/adapters/pgx"
	"github.com/lborres/agromart/pkg/config"
	"github.com/lborres/agromart/pkg/logging"
	"github.com/lborres/agromart/sandbox"
)

const (
	bodyLimit     = 32 << 20
	sweepInterval = 10 * time.Minute
)

// logFormat leaves out headers and bodies; both carry credentials here.
func logFormat() string {
	format := []string{
		// Timestamp
		"${time}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}",

		// Transfer size
		"${bytesReceived}|${bytesSent}",

		// Request details
		"${method}|${path}",

		// errors
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	cfg, loaded := config.LoadSandbox()

	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if loaded {
		log.Debug("loaded .env")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("sandbox stopped", zap.Error(err))
	}
}

func run(cfg config.Sandbox, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	app := fiber.New(fiber.Config{
		AppName:   "agromart-sandbox",
		BodyLimit: bodyLimit,
	})
	app.Use(logger.New(logger.Config{
		Format:     logFormat(),
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))

	s, err := sandbox.New(sandbox.Config{
		Storage: storage,
		HTTP: fiberadapter.New(app, fiberadapter.Options{
			AuthRate:  rate.Limit(cfg.AuthRateLimit),
			AuthBurst: cfg.AuthBurst,
			Logger:    log.Named("http"),
		}),
		SessionConfig: &sandbox.SessionConfig{MaxAge: cfg.SessionMaxAge},
		BasePath:      cfg.BasePath,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if cfg.AdminPassword != "" {
		admin, err := s.Auth.EnsureAdmin(ctx, sandbox.AdminInput{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			return err
		}
		log.Info("admin account ready", zap.String("email", admin.Email))
	}

	go sweep(ctx, s, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("sandbox listening", zap.String("addr", cfg.Addr), zap.String("base_path", s.BasePath))
		errCh <- app.Listen(cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Sandbox, log *zap.Logger) (sandbox.Storage, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory storage")
		return sandbox.NewMemoryStorage(), func() {}, nil
	}

	db, err := pgxadapter.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using postgres storage")
	return db, db.Close, nil
}

// sweep drops expired sessions until ctx ends
func sweep(ctx context.Context, s *sandbox.Sandbox, log *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sessions.Sweep(ctx)
			if err != nil {
				log.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
