package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cool4zbl/build-redis-from-scratch/internal/telemetry/metric"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_StartShutdown(t *testing.T) {
	reg := metric.NewRegistry()
	reg.ObserveCommand("PING", true, time.Millisecond)

	s := New("127.0.0.1:0", NewRouter(&RouterConfig{Metrics: reg, Logger: testLogger()}), testLogger())
	if s.Addr() != nil {
		t.Error("Addr() should be nil before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	base := "http://" + s.Addr().String()

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `respkv_commands_total{command="PING",status="ok"} 1`) {
		t.Errorf("metrics output missing command counter")
	}

	resp, err = http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}
	if _, err := http.Get(base + "/health"); err == nil {
		t.Error("server still answering after Shutdown")
	}
}

func TestServer_StartBusyPort(t *testing.T) {
	first := New("127.0.0.1:0", http.NotFoundHandler(), testLogger())
	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	defer first.Shutdown(context.Background())

	second := New(first.Addr().String(), http.NotFoundHandler(), testLogger())
	if err := second.Start(); err == nil {
		second.Shutdown(context.Background())
		t.Fatal("Start() on a busy port should fail")
	}
}

func TestDefaultRouterConfig(t *testing.T) {
	cfg := DefaultRouterConfig()
	if cfg.RateLimit <= 0 {
		t.Error("RateLimit should be positive")
	}
	if cfg.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestNewRouter_NoMetrics(t *testing.T) {
	h := NewRouter(&RouterConfig{})
	rec := newRecorder(h, "/metrics", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
