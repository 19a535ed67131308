// Package httpserver serves the admin HTTP endpoint of respkv-server.
//
// Routes:
//
//   - GET /health   liveness
//   - GET /ready    readiness of the RESP listener
//   - GET /metrics  Prometheus exposition
//   - GET /stats    keyspace statistics
//   - GET /version  build information
//
// Every route passes through Recover, RequestID, RateLimit and AccessLog.
package httpserver
