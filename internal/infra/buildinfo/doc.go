// Package buildinfo provides build information for respkv binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/cool4zbl/build-redis-from-scratch/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not, module and VCS data embedded by the Go toolchain
// are used instead.
package buildinfo
