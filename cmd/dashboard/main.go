package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/bwiize/dashboard/internal/api"
	"github.com/bwiize/dashboard/internal/config"
	"github.com/bwiize/dashboard/internal/database"
	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/engine"
	"github.com/bwiize/dashboard/internal/export"
	"github.com/bwiize/dashboard/internal/logging"
	"github.com/bwiize/dashboard/internal/snapshot"
	"github.com/bwiize/dashboard/internal/wallet"
	"github.com/bwiize/dashboard/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "dashboard",
		Usage: "student finance dashboard state engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; environment variables override it",
				EnvVars: []string{"DASHBOARD_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API with the journal worker",
				Action: serve,
			},
			simulateCommand(),
			exportCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup resolves configuration and installs the default logger.
func setup(c *cli.Context) (config.Config, error) {
	cfg := config.Load()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return config.Config{}, err
		}
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func newEngine(cfg config.Config, sched engine.Scheduler) *engine.Engine {
	eng := engine.New(engine.Options{
		LoadDelay:          cfg.LoadDelay,
		ConnectDelay:       cfg.WalletConnectDelay,
		CelebrationDelay:   cfg.CelebrationDelay,
		ChallengesRequired: cfg.ChallengesRequired,
		CarouselPages:      cfg.CarouselPages,
		SwipeThreshold:     cfg.SwipeThreshold,
		DedupChallenges:    cfg.ChallengeDedup,
		Preferences:        domain.Preferences{Theme: domain.Theme(cfg.Theme)},
		Scheduler:          sched,
		Handshaker:         wallet.NewStaticHandshaker(cfg.WalletAddress, cfg.XRPUSDRate),
	})
	eng.Subscribe(func(_ domain.Snapshot, notes []domain.Notification) {
		for _, n := range notes {
			slog.Info("Engine: notification", "kind", n.Kind, "version", n.Version, "message", n.Message)
		}
	})
	return eng
}

// newExporter combines the configured spreadsheet destinations. It returns nil when
// none is configured.
func newExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	var writers export.MultiWriter
	if cfg.ExportPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.ExportPath))
	}
	if cfg.GoogleSheetsID != "" && cfg.GoogleCredentialsJSON != "" {
		sw, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sw)
	}
	if len(writers) == 0 {
		return nil, nil
	}
	return export.NewService(writers), nil
}

func serve(c *cli.Context) error {
	ctx := c.Context
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	var repo snapshot.Repository
	if cfg.DatabaseURL != "" {
		migrations, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			return fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		pool, err := database.Open(ctx, cfg.DatabaseURL, migrations)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo = snapshot.NewPgRepository(pool)
	} else {
		slog.Warn("DATABASE_URL not set, activity journal kept in memory")
		repo = snapshot.NewMemoryRepository()
	}

	sched := worker.NewScheduler()
	go sched.Run(ctx)

	eng := newEngine(cfg, sched)
	eng.Load()

	journal := snapshot.NewService(eng, repo)

	exportSvc, err := newExporter(ctx, cfg)
	if err != nil {
		return err
	}
	var (
		hook     worker.AfterRecordHook
		exporter api.Exporter
	)
	if exportSvc != nil {
		hook, exporter = exportSvc, exportSvc
	}

	journalWorker := worker.NewJournalWorker(journal, cfg.JournalInterval, hook)
	go journalWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, export endpoint is unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, api.NewHandler(eng, journal, exporter), cfg.AdminAPIKey, cfg.CORSOrigins)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	}
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
