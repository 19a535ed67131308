// Package metric provides Prometheus metrics for the server.
//
//   - prometheus.go: registry, command and connection metrics, HTTP handler
//   - collector.go: scrape-time collector for store statistics
//
// A nil *Registry records nothing, so the server runs unchanged when
// metrics are disabled. Metrics are exposed at /metrics in Prometheus
// text format.
package metric
