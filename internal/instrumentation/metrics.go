package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrTool    = "tool"
	attrResult  = "result"
	attrAccount = "account"
	attrOp      = "operation"
)

// Result values for metric attributes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics provides methods for recording observability metrics. The zero
// value is a no-op recorder.
type Metrics struct {
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	gmailOperationsTotal   metric.Int64Counter
	gmailOperationDuration metric.Float64Histogram

	oauthTokenRefreshTotal metric.Int64Counter

	fanoutAccounts        metric.Int64Histogram
	fanoutPartialFailures metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered on
// the meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration_seconds histogram: %w", err)
	}

	m.gmailOperationsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	m.gmailOperationDuration, err = meter.Float64Histogram(
		"gmail_api_operation_duration_seconds",
		metric.WithDescription("Gmail API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of persisted OAuth token refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.fanoutAccounts, err = meter.Int64Histogram(
		"fanout_accounts",
		metric.WithDescription("Number of accounts fanned out per aggregated read"),
		metric.WithUnit("{account}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 21),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fanout_accounts histogram: %w", err)
	}

	m.fanoutPartialFailures, err = meter.Int64Counter(
		"fanout_partial_failures_total",
		metric.WithDescription("Total number of per-account failures contained during fan-out"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fanout_partial_failures_total counter: %w", err)
	}

	return m, nil
}

// RecordToolInvocation records one MCP tool invocation with its outcome and
// duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, result string, duration time.Duration) {
	if m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrResult, result),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGmailOperation records one Gmail API operation for an account.
func (m *Metrics) RecordGmailOperation(ctx context.Context, operation, account, result string, duration time.Duration) {
	if m.gmailOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOp, operation),
		attribute.String(attrAccount, account),
		attribute.String(attrResult, result),
	)
	m.gmailOperationsTotal.Add(ctx, 1, attrs)
	m.gmailOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRefresh records a persisted OAuth token refresh.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, account string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrAccount, account),
	))
}

// RecordFanout records the width and partial-failure count of one
// aggregated read.
func (m *Metrics) RecordFanout(ctx context.Context, accounts, failures int) {
	if m.fanoutAccounts == nil {
		return
	}
	m.fanoutAccounts.Record(ctx, int64(accounts))
	if failures > 0 {
		m.fanoutPartialFailures.Add(ctx, int64(failures))
	}
}
