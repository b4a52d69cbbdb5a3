// Package common provides shared utilities for MCP tool handlers:
// argument extraction and coercion from tool requests, and a handler
// wrapper that records invocation metrics.
package common
