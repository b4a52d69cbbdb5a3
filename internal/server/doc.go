// Package server provides the MCP server context and the dedicated
// metrics endpoint for the manymail application.
//
// ServerContext manages per-account Gmail API clients with lazy
// initialization and caching. Clients are keyed by account ID and built
// from the on-disk credential and token artifacts under the configuration
// root. InvalidateClient drops a cached client after re-authentication so
// the next tool call picks up the fresh token.
//
// MetricsServer serves Prometheus metrics and a health endpoint on a
// dedicated port. The MCP transport runs over stdio, so operational
// endpoints live on their own listener.
package server
