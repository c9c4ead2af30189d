package executioncontext

import (
	"context"
	"log/slog"
	"time"
)

// ExecutionContext carries the state shared by one operation: a CLI command,
// an ingestion run or an HTTP request. Operations receive an ExecutionContext
// instead of a raw context so that the logger they use is already enriched
// with the request or run identifiers.
type ExecutionContext struct {
	Ctx       context.Context
	RequestID string
	Logger    *slog.Logger
	StartedAt time.Time
}

func NewExecutionContext(ctx context.Context, requestID string, logger *slog.Logger) *ExecutionContext {
	return &ExecutionContext{
		Ctx:       ctx,
		RequestID: requestID,
		Logger:    logger,
		StartedAt: time.Now(),
	}
}

// With returns a copy whose logger carries the extra attributes.
func (e *ExecutionContext) With(args ...any) *ExecutionContext {
	c := *e
	c.Logger = e.Logger.With(args...)
	return &c
}

// Elapsed is the time since the context was created.
func (e *ExecutionContext) Elapsed() time.Duration {
	return time.Since(e.StartedAt)
}
