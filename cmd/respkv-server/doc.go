// Command respkv-server serves an in-memory key-value store over the
// Redis serialization protocol (RESP).
//
// Usage:
//
//	respkv-server [--config respkv.yaml] [--dir path] [--dbfilename name] [--addr host:port]
//
// Configuration is read from defaults, the optional YAML file, RESPKV_*
// environment variables and flags, each overriding the previous one.
// The dir and dbfilename values are only reported through CONFIG GET.
// When a config file is given it is watched and the log level is
// applied on change.
package main
