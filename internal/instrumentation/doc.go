// Package instrumentation provides OpenTelemetry instrumentation for the
// manymail MCP server.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// MCP Tool Metrics:
//   - tool_invocations_total: Counter of MCP tool invocations by tool name and result
//   - tool_duration_seconds: Histogram of MCP tool execution durations
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation, account, result
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API operation durations
//
// OAuth Metrics:
//   - oauth_token_refresh_total: Counter of persisted token refreshes by account
//
// Fan-out Metrics:
//   - fanout_accounts: Histogram of accounts fanned out per aggregated read
//   - fanout_partial_failures_total: Counter of contained per-account failures
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: manymail)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "manymail",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolInvocation(ctx, "gmail_search_emails", "success", time.Since(start))
package instrumentation
