package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyStore(&cfg.Store),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.WriteTimeout < 0 {
		errs = append(errs, errors.New("server.redis.write_timeout must not be negative"))
	}
	if cfg.Redis.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis.idle_timeout must not be negative"))
	}
	if cfg.Metrics.Enabled {
		if err := verifyAddr("server.metrics.addr", cfg.Metrics.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.Metrics.Addr == cfg.Redis.Addr {
			errs = append(errs, fmt.Errorf("server.metrics.addr %q conflicts with server.redis.addr", cfg.Metrics.Addr))
		}
	}
	return errors.Join(errs...)
}

func verifyStore(cfg *StoreSection) error {
	var errs []error
	if cfg.Dir == "" {
		errs = append(errs, errors.New("store.dir is required"))
	}
	if cfg.DBFilename == "" {
		errs = append(errs, errors.New("store.dbfilename is required"))
	}
	if strings.ContainsAny(cfg.DBFilename, `/\`) {
		errs = append(errs, fmt.Errorf("store.dbfilename %q must be a file name, not a path", cfg.DBFilename))
	}
	if cfg.ReaperMaxSleep <= 0 {
		errs = append(errs, errors.New("store.reaper_max_sleep must be positive"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q: %w", key, addr, err)
	}
	return nil
}
