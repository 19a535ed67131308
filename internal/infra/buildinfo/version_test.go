package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.Version == "" {
		t.Error("Version is empty")
	}
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := fill(Info{Version: "dev", Commit: "unknown", BuildTime: "unknown"}, bi)
	want := Info{Version: "v1.2.3", Commit: "0123456789ab", BuildTime: "2026-01-02T03:04:05Z"}
	if got != want {
		t.Errorf("fill() = %+v, want %+v", got, want)
	}

	// ldflags values win.
	got = fill(Info{Version: "v9", Commit: "abc", BuildTime: "now"}, bi)
	if got.Version != "v9" || got.Commit != "abc" || got.BuildTime != "now" {
		t.Errorf("fill() overrode ldflags: %+v", got)
	}

	// Local builds report (devel).
	got = fill(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "v1", Commit: "c", BuildTime: "t", GoVersion: "go1.24"}.String()
	if s != "v1 (c) built at t with go1.24" {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(String(), runtime.Version()) {
		t.Errorf("String() = %q", String())
	}
}
