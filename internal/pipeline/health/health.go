// Package health exposes liveness information for the triage service:
// state-store freshness, dead-letter backlog, and database reachability.
package health

import "time"

// Status is a component health level.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// ComponentHealth describes one monitored component.
type ComponentHealth struct {
	Component  string    `json:"component"`
	Status     Status    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	DeadLetter int64     `json:"dead_letter,omitempty"`
	LastRun    time.Time `json:"last_run,omitempty"`
}
