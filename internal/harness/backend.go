// Package harness drives the generative backend: it collects the evaluated
// model's answers and has an evaluator model grade them.
package harness

import (
	"context"
	"wireshairk/internal/models"
)

//go:generate mockgen -source=backend.go -destination=backend_mock.go -package=harness

// Backend is a generative text service.
type Backend interface {
	// Generate returns the completion for req. An empty completion is not an error.
	Generate(ctx context.Context, req models.GenerateRequest) (string, error)
	// Ping checks that the service is reachable.
	Ping(ctx context.Context) error
}

// Confirmer blocks until an operator decides whether to continue.
type Confirmer interface {
	Confirm(ctx context.Context, message string) error
}

// RecordWriter persists one output record.
type RecordWriter interface {
	Write(v any) error
}
