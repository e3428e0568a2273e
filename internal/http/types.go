package http

import "github.com/fyrsmithlabs/otelfmu/internal/telemetry"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string                  `json:"status"` // "ok" or "degraded"
	Telemetry *telemetry.HealthStatus `json:"telemetry,omitempty"`
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Instrumentation string   `json:"instrumentation"` // "enabled" or "disabled"
	Active          bool     `json:"active"`
	Dependencies    []string `json:"dependencies"`
}
