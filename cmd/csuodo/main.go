package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hilodev/csuodo/internal/api"
	"github.com/hilodev/csuodo/internal/cache"
	"github.com/hilodev/csuodo/internal/config"
	"github.com/hilodev/csuodo/internal/db"
	"github.com/hilodev/csuodo/internal/odometer"
	"github.com/hilodev/csuodo/internal/report"
	"github.com/hilodev/csuodo/internal/scheduler"
)

// Injected at build time via -ldflags; defaults to "dev".
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// ── Logging (initial — overridden below once config is loaded) ─────────
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// ── Config ─────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	// Re-configure logging with the level from config (default: info).
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("csuodo starting",
		"version", version,
		"log_level", cfg.LogLevel,
		"http_addr", cfg.HTTPAddr,
		"db_path", cfg.DBPath,
		"log_glob", cfg.LogGlob,
		"syslog_path", cfg.SyslogPath,
		"cache_backend", cfg.CacheBackend)

	// ── Database ───────────────────────────────────────────────────────────
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	if dbSettings, err := db.LoadSettings(database); err == nil {
		config.MergeDBSettings(cfg, dbSettings)
	}

	// Mark any runs that were 'running' when the last process exited as failed.
	if err := odometer.MarkStaleRunsFailed(database); err != nil {
		slog.Warn("mark stale runs", "error", err)
	}

	// ── Result cache ───────────────────────────────────────────────────────
	var store odometer.Store
	switch cfg.CacheBackend {
	case "sqlite":
		store = cache.NewSQLiteStore(database)
	default:
		store = cache.NewJSONStore()
	}

	// ── Run manager ────────────────────────────────────────────────────────
	runCfg := odometer.Config{
		LogGlob:    cfg.LogGlob,
		SyslogPath: cfg.SyslogPath,
	}
	mgr := odometer.NewManager(database, store, runCfg, &report.FileExporter{Dir: cfg.OutputDir})

	// ── Scheduler ──────────────────────────────────────────────────────────
	sched := scheduler.New()
	scheduleRecompute := func(expr string) error {
		return sched.SetJob(expr, func() {
			slog.Info("scheduled recompute triggered")
			if _, err := mgr.Start(context.Background(), "schedule"); err != nil {
				slog.Warn("scheduled run start", "error", err)
			}
		})
	}
	if !cfg.Paused && cfg.Schedule != "" {
		if err := scheduleRecompute(cfg.Schedule); err != nil {
			slog.Warn("invalid cron expression", "expr", cfg.Schedule, "error", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunOnStart {
		if _, err := mgr.Start(ctx, "startup"); err != nil {
			slog.Warn("startup run", "error", err)
		}
	}

	// ── HTTP server ────────────────────────────────────────────────────────
	srv := api.New(cfg.HTTPAddr, database, cfg, mgr, store, sched, scheduleRecompute, version)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("csuodo stopped")
}

// parseLogLevel converts a config string ("debug", "info", "warn", "error")
// to its slog.Level equivalent. Unknown values default to Info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
