package models

import (
	"time"
)

// Core domain models

// RunStatus describes the lifecycle state of an orchestration run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run represents one orchestration action against the local container engine
// (bringing an environment up, a one-shot lint pass, a prune, a docs build).
type Run struct {
	ID          string     `json:"id"`
	Environment string     `json:"environment,omitempty"` // empty for actions not tied to an environment
	Action      string     `json:"action"`                // up, lint, prune, docs
	Services    []string   `json:"services,omitempty"`
	Status      RunStatus  `json:"status"`
	ExitCode    int        `json:"exit_code"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Environment represents a named service set bound to a compose file.
type Environment struct {
	Name        string   `json:"name"`
	ComposeFile string   `json:"compose_file"`
	Services    []string `json:"services"`
	Probe       bool     `json:"probe"` // wait for readiness after start when detached
}

// ServiceState is one entry of a `docker compose ps` listing, passed through
// by the status API.
type ServiceState struct {
	Name    string `json:"Name"`
	Service string `json:"Service"`
	State   string `json:"State"`
	Status  string `json:"Status"`
	Image   string `json:"Image"`
}

// PaginatedResponse wraps list endpoints with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
