package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cool4zbl/build-redis-from-scratch/internal/infra/buildinfo"
	"github.com/cool4zbl/build-redis-from-scratch/internal/infra/confloader"
	"github.com/cool4zbl/build-redis-from-scratch/internal/infra/shutdown"
	"github.com/cool4zbl/build-redis-from-scratch/internal/server/config"
	"github.com/cool4zbl/build-redis-from-scratch/internal/server/httpserver"
	"github.com/cool4zbl/build-redis-from-scratch/internal/server/redisserver"
	"github.com/cool4zbl/build-redis-from-scratch/internal/storage/memory"
	"github.com/cool4zbl/build-redis-from-scratch/internal/telemetry/logger"
	"github.com/cool4zbl/build-redis-from-scratch/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "respkv-server",
		Usage:           "in-memory key-value server speaking RESP",
		Version:         buildinfo.String(),
		Flags:           serverFlags(),
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			return serve(c.Context, c.String("config"), flagOverrides(c), os.Stderr)
		},
	}
}

// flagKeys maps each flag to the configuration key it overrides.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"addr", "server.redis.addr"},
	{"dir", "store.dir"},
	{"dbfilename", "store.dbfilename"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
	{"metrics", "server.metrics.enabled"},
	{"metrics-addr", "server.metrics.addr"},
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"RESPKV_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "RESP listen address",
			Value: config.DefaultRedisAddr,
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "value reported by CONFIG GET dir",
			Value: config.DefaultDir,
		},
		&cli.StringFlag{
			Name:  "dbfilename",
			Usage: "value reported by CONFIG GET dbfilename",
			Value: config.DefaultDBFilename,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: config.DefaultLogLevel,
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
			Value: config.DefaultLogFormat,
		},
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "serve Prometheus metrics",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Prometheus listen address",
			Value: config.DefaultMetricsAddr,
		},
	}
}

// flagOverrides returns the explicitly set flags keyed by configuration
// path. Unset flags leave file and environment values in place.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for _, fk := range flagKeys {
		if c.IsSet(fk.flag) {
			out[fk.key] = c.Value(fk.flag)
		}
	}
	return out
}

// serve runs the server until a termination signal or cancellation of ctx.
func serve(ctx context.Context, configFile string, overrides map[string]any, logOut io.Writer) error {
	loader := confloader.NewLoader(
		confloader.WithDefaults(config.DefaultMap()),
		confloader.WithConfigFile(configFile),
		confloader.WithOverrides(overrides),
	)
	cfg := &config.ServerConfig{}
	if err := loader.Load(cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	store := memory.New(
		memory.WithConfig(memory.ConfigDir, cfg.Store.Dir),
		memory.WithConfig(memory.ConfigDBFilename, cfg.Store.DBFilename),
		memory.WithReaperMaxSleep(cfg.Store.ReaperMaxSleep),
		memory.WithLogger(log),
	)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, log)

	// Hooks run in reverse order: the store is released last.
	shutdownHandler.OnShutdown("store", func(context.Context) error {
		return store.Close()
	})

	var metrics *metric.Registry
	if cfg.Server.Metrics.Enabled {
		metrics = metric.Global()
		metrics.MustRegister(metric.NewStoreCollector(store))
	}

	srv := redisserver.New(&redisserver.Config{
		Address:      cfg.Server.Redis.Addr,
		WriteTimeout: cfg.Server.Redis.WriteTimeout,
		IdleTimeout:  cfg.Server.Redis.IdleTimeout,
	}, store, log, metrics)

	if err := srv.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start redis server: %w", err)
	}
	shutdownHandler.OnShutdown("redis server", srv.Shutdown)

	if cfg.Server.Metrics.Enabled {
		routerCfg := httpserver.DefaultRouterConfig()
		routerCfg.Metrics = metrics
		routerCfg.Stats = store
		routerCfg.Ready = srv.Accepting
		routerCfg.Logger = log

		admin := httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(routerCfg), log)
		if err := admin.Start(); err != nil {
			_ = srv.Shutdown(context.Background())
			_ = store.Close()
			return fmt.Errorf("start admin HTTP server: %w", err)
		}
		shutdownHandler.OnShutdown("admin HTTP server", admin.Shutdown)
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, loader, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("ready to accept connections", "addr", srv.Addr().String())
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchConfig applies the log level from path whenever it changes.
// Other settings need a restart.
func watchConfig(path string, loader *confloader.Loader, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		next := &config.ServerConfig{}
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := logger.SetLevel(next.Log.Level); err != nil {
			log.Warn("config reload: bad log level", "level", next.Log.Level, "error", err)
			return
		}
		log.Info("config reloaded", "log_level", next.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}
