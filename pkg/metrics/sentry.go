// Package metrics reports conversions to Sentry.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global Sentry client. With an empty DSN Sentry stays
// disabled and the returned flush is a no-op.
func Init(dsn, environment, release string) (flush func(), err error) {
	if dsn == "" {
		return func() {}, nil
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// SentryMetrics records conversion spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a metrics client. A disabled client records nothing.
func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

// Enabled reports whether anything is recorded
func (m *SentryMetrics) Enabled() bool {
	return m != nil && m.enabled
}

// StartTransaction starts a transaction named name and returns the context
// carrying it together with the function finishing it.
func (m *SentryMetrics) StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	if !m.Enabled() {
		return ctx, func() {}
	}
	transaction := sentry.StartTransaction(ctx, name)
	return transaction.Context(), transaction.Finish
}

// RecordConversion records one convert or merge request
func (m *SentryMetrics) RecordConversion(ctx context.Context, from, to string, warnings int, duration time.Duration, err error) {
	if !m.Enabled() {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("convert.from", from)
		transaction.SetTag("convert.to", to)
	}

	span := sentry.StartSpan(ctx, "convert.project")
	defer span.Finish()

	span.SetTag("from", from)
	span.SetTag("to", to)
	span.SetTag("success", fmt.Sprintf("%t", err == nil))
	span.SetData("warnings", warnings)
	span.SetData("duration_ms", duration.Milliseconds())

	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		sentry.CaptureException(err)
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Description = fmt.Sprintf("Convert: %s -> %s", from, to)
}

// RecordPitchCodec records one sparse pitch decode or encode
func (m *SentryMetrics) RecordPitchCodec(ctx context.Context, engine, direction string, events, points, warnings int) {
	if !m.Enabled() {
		return
	}

	span := sentry.StartSpan(ctx, "pitch."+direction)
	defer span.Finish()

	span.SetTag("engine", engine)
	span.SetData("events", events)
	span.SetData("points", points)
	span.SetData("warnings", warnings)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Pitch %s: %s", direction, engine)
}

// CaptureError reports err outside of a request; it does nothing when
// Sentry was not initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
