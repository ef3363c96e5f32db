package tools

import (
	"context"
	"time"

	"github.com/teemow/gdocs-mcp/internal/google"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
)

// observe wraps one Google API round trip in a client span and an
// operation metric. fn sees the span context so the underlying HTTP
// call is attributed to the operation.
func observe(ctx context.Context, session *google.Session, service, operation string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	session.Metrics().RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	return err
}
