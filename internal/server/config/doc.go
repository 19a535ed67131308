// Package config provides the server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values, also exposed as a flat koanf map
//   - verify.go: validation of addresses, names, levels and durations
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: defaults, a YAML file, environment variables, and flags.
package config
