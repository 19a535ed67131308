package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Server.Redis.Addr)
	}
	if cfg.Server.Redis.WriteTimeout != 30*time.Second {
		t.Errorf("Redis.WriteTimeout = %v", cfg.Server.Redis.WriteTimeout)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("metrics should be disabled by default")
	}
	if cfg.Store.Dir != "/tmp/redis-files" {
		t.Errorf("Store.Dir = %q", cfg.Store.Dir)
	}
	if cfg.Store.DBFilename != "dump.rdb" {
		t.Errorf("Store.DBFilename = %q", cfg.Store.DBFilename)
	}
	if cfg.Store.ReaperMaxSleep != 100*time.Millisecond {
		t.Errorf("Store.ReaperMaxSleep = %v", cfg.Store.ReaperMaxSleep)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestDefaultMap(t *testing.T) {
	m := DefaultMap()

	tests := map[string]any{
		"server.redis.addr":          DefaultRedisAddr,
		"server.redis.write_timeout": "30s",
		"server.redis.idle_timeout":  "0s",
		"server.metrics.enabled":     false,
		"store.dir":                  DefaultDir,
		"store.dbfilename":           DefaultDBFilename,
		"store.reaper_max_sleep":     "100ms",
		"log.level":                  "info",
	}
	for key, want := range tests {
		if got := m[key]; got != want {
			t.Errorf("DefaultMap()[%q] = %v, want %v", key, got, want)
		}
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*ServerConfig)
		wantErr []string
	}{
		{
			name:   "defaults",
			modify: func(*ServerConfig) {},
		},
		{
			name:    "redis addr without port",
			modify:  func(c *ServerConfig) { c.Server.Redis.Addr = "localhost" },
			wantErr: []string{"server.redis.addr"},
		},
		{
			name:    "empty redis addr",
			modify:  func(c *ServerConfig) { c.Server.Redis.Addr = "" },
			wantErr: []string{"server.redis.addr is required"},
		},
		{
			name:    "negative timeouts",
			modify:  func(c *ServerConfig) { c.Server.Redis.WriteTimeout = -1; c.Server.Redis.IdleTimeout = -1 },
			wantErr: []string{"write_timeout", "idle_timeout"},
		},
		{
			name:   "metrics addr ignored when disabled",
			modify: func(c *ServerConfig) { c.Server.Metrics.Addr = "bad" },
		},
		{
			name: "metrics addr conflict",
			modify: func(c *ServerConfig) {
				c.Server.Metrics.Enabled = true
				c.Server.Metrics.Addr = c.Server.Redis.Addr
			},
			wantErr: []string{"conflicts"},
		},
		{
			name:    "empty dbfilename",
			modify:  func(c *ServerConfig) { c.Store.DBFilename = "" },
			wantErr: []string{"store.dbfilename is required"},
		},
		{
			name:    "dbfilename is a path",
			modify:  func(c *ServerConfig) { c.Store.DBFilename = "a/dump.rdb" },
			wantErr: []string{"must be a file name"},
		},
		{
			name:    "empty dir",
			modify:  func(c *ServerConfig) { c.Store.Dir = "" },
			wantErr: []string{"store.dir is required"},
		},
		{
			name:    "zero reaper sleep",
			modify:  func(c *ServerConfig) { c.Store.ReaperMaxSleep = 0 },
			wantErr: []string{"reaper_max_sleep"},
		},
		{
			name: "bad log settings reported together",
			modify: func(c *ServerConfig) {
				c.Log.Level = "loud"
				c.Log.Format = "xml"
			},
			wantErr: []string{"log.level", "log.format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Verify(cfg)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Verify() error = nil")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Verify() error = %q, want it to mention %q", err, want)
				}
			}
		})
	}
}
