// @title			farmops API
// @version		1.0
// @description	Efficiency and resource-usage reports for farm operations.
// @BasePath		/api/v1

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/farmops/internal/config"
	"github.com/mtlprog/farmops/internal/database"
	"github.com/mtlprog/farmops/internal/handler"
	"github.com/mtlprog/farmops/internal/logger"
	"github.com/mtlprog/farmops/internal/repository"
	"github.com/mtlprog/farmops/internal/service"
)

// flagKeys maps CLI flags to config keys. Flags override file and env values
// only when given explicitly.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"log-format":     "log_format",
	"database-url":   "database_url",
	"port":           "port",
	"recalc-mode":    "recalc.mode",
	"recalc-workers": "recalc.workers",
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "farmops",
		Usage: "Efficiency and resource-usage reporting for farm operations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"FARMOPS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: logger.FormatJSON,
				Usage: "Log format (json, text)",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:  "recalc-mode",
						Value: config.RecalcModeInline,
						Usage: "Efficiency recalculation dispatch (inline, queue, kafka)",
					},
					&cli.IntFlag{
						Name:  "recalc-workers",
						Usage: "Recalculation workers for queue and kafka modes",
					},
				},
				Action: runServe,
			},
			{
				Name:   "recalculate",
				Usage:  "Recompute the persisted efficiency of every worker, leader and team",
				Action: runRecalculate,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadConfig layers explicitly set flags over file, env and defaults, then
// reconfigures logging from the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if !c.IsSet(flag) {
			continue
		}
		if flag == "recalc-workers" {
			overrides[key] = c.Int(flag)
			continue
		}
		overrides[key] = c.String(flag)
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return nil, err
	}

	logger.Setup(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	return cfg, nil
}

// openDatabase connects and migrates.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewWithOptions(ctx, cfg.DatabaseURL, database.Options{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := database.RunMigrations(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	trigger, stopWorkers, err := newTrigger(ctx, cfg.Recalc, db.Pool())
	if err != nil {
		return err
	}

	h := handler.New(db.Pool(), trigger, handler.PageLimits{
		DefaultSize: cfg.Report.DefaultPageSize,
		MaxSize:     cfg.Report.MaxPageSize,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server",
			"server_addr", "http://localhost:"+cfg.Port,
			"recalc_mode", cfg.Recalc.Mode,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return serverFailure(err, stopWorkers)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Jobs fired by the last requests are drained before the pool closes.
	if err := stopWorkers(shutdownCtx); err != nil {
		return fmt.Errorf("recalculation shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// serverFailure stops the recalculation workers after the listener died and
// returns the server error. A failed stop is logged, not returned.
func serverFailure(err error, stopWorkers func(context.Context) error) error {
	if stopErr := stopWorkers(context.Background()); stopErr != nil {
		slog.Error("failed to stop recalculation workers", "error", stopErr)
	}
	return fmt.Errorf("server error: %w", err)
}

func runRecalculate(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	subjectRepo := repository.NewSubjectRepository(db.Pool())
	scores := service.NewScoreService(subjectRepo, newProcessor(cfg.Recalc, db.Pool()))

	start := time.Now()
	result, err := scores.RecalculateAll(ctx)

	slog.Info("efficiency recalculation finished",
		"updated", result.Updated,
		"not_found", result.NotFound,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return err
}
