package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/phira-mp/internal/admin"
	"github.com/udisondev/phira-mp/internal/config"
	"github.com/udisondev/phira-mp/internal/history"
	"github.com/udisondev/phira-mp/internal/i18n"
	"github.com/udisondev/phira-mp/internal/lobby"
	"github.com/udisondev/phira-mp/internal/phira"
	"github.com/udisondev/phira-mp/internal/room"
	"github.com/udisondev/phira-mp/internal/web"
)

const configPath = "config/lobbyserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level.
	cfgPath := configPath
	if p := os.Getenv("PHIRA_MP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("phira-mp lobby server starting",
		"log_level", cfg.LogLevel,
		"lobby", cfg.Lobby.Addr(),
		"web", cfg.Web.Addr,
		"admin", cfg.Admin.Addr)

	catalog, err := i18n.New(cfg.Locale.OverrideDir)
	if err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}

	// Play history is optional: without a database the lobby runs with
	// a no-op recorder and the records endpoint stays empty.
	var (
		recorder history.Recorder = history.Nop{}
		plays    web.PlayLister
	)
	if cfg.Database.Enabled() {
		if err := history.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		pg, err := history.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pg.Close()
		recorder = pg
		plays = pg
		slog.Info("play history enabled", "host", cfg.Database.Host)
	} else {
		slog.Info("play history disabled, no database configured")
	}

	fetcher := phira.NewCachedFetcher(phira.NewClient(cfg.Identity.BaseURL, cfg.Identity.Timeout))
	roster := room.LoadRoster(cfg.Lobby.MonitorRoster)
	registry := room.NewRegistry(roster)

	lobbySrv := lobby.NewServer(cfg.Lobby, catalog, fetcher, registry, recorder)
	webSrv := web.NewServer(registry, plays)

	// The console refuses to start without a signing secret; running
	// without it just disables remote administration.
	var adminSrv *admin.Server
	if cfg.Admin.JWTSecret != "" {
		adminSrv, err = admin.NewServer(cfg.Admin, registry)
		if err != nil {
			return fmt.Errorf("setting up admin console: %w", err)
		}
	} else {
		slog.Warn("admin console disabled, no jwt secret configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := lobbySrv.Run(gctx); err != nil {
			return fmt.Errorf("lobby server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := webSrv.Run(gctx, cfg.Web.Addr); err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	if adminSrv != nil {
		g.Go(func() error {
			if err := adminSrv.Run(gctx, cfg.Admin.Addr); err != nil {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
