package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr         = "127.0.0.1:6379"
	DefaultRedisWriteTimeout = 30 * time.Second
	DefaultMetricsAddr       = "127.0.0.1:9121"

	DefaultDir            = "/tmp/redis-files"
	DefaultDBFilename     = "dump.rdb"
	DefaultReaperMaxSleep = 100 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				WriteTimeout: DefaultRedisWriteTimeout,
			},
			Metrics: MetricsConfig{
				Enabled: false,
				Addr:    DefaultMetricsAddr,
			},
		},
		Store: StoreSection{
			Dir:            DefaultDir,
			DBFilename:     DefaultDBFilename,
			ReaperMaxSleep: DefaultReaperMaxSleep,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns the defaults keyed by their koanf paths. Loading it
// first makes every key known before files and environment are applied.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.redis.addr":          d.Server.Redis.Addr,
		"server.redis.write_timeout": d.Server.Redis.WriteTimeout.String(),
		"server.redis.idle_timeout":  d.Server.Redis.IdleTimeout.String(),
		"server.metrics.enabled":     d.Server.Metrics.Enabled,
		"server.metrics.addr":        d.Server.Metrics.Addr,
		"store.dir":                  d.Store.Dir,
		"store.dbfilename":           d.Store.DBFilename,
		"store.reaper_max_sleep":     d.Store.ReaperMaxSleep.String(),
		"log.level":                  d.Log.Level,
		"log.format":                 d.Log.Format,
	}
}
