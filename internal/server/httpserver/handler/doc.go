// Package handler implements the JSON endpoints of the admin HTTP server.
//
// Responses share the Response envelope; /metrics is served by the
// Prometheus handler directly and is not part of this package.
package handler
