// Package logger provides structured logging for the server.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler construction and the process-wide level
//   - context.go: loggers carried in a context with connection IDs
//   - redact.go: secret redaction and client payload truncation
//
// The level is held in a shared slog.LevelVar, so it can be changed at
// runtime (for example when the config file is reloaded).
package logger
