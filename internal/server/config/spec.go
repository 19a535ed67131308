package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Store  StoreSection  `koanf:"store"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures network endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// WriteTimeout bounds a single flush of replies to a client.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes clients that send nothing for this long. 0 disables it.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StoreSection configures the in-memory store.
//
// Dir and DBFilename are only reported through CONFIG GET; nothing is
// read from or written to disk.
type StoreSection struct {
	Dir            string        `koanf:"dir"`
	DBFilename     string        `koanf:"dbfilename"`
	ReaperMaxSleep time.Duration `koanf:"reaper_max_sleep"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
