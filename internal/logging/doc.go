// Package logging provides slog attribute helpers for consistent,
// PII-free structured logging across the codebase.
package logging
