package config

import "errors"

// Sentinel errors for registry and resolution failures. Callers match with
// errors.Is; the wrapped message carries the offending account id.
var (
	// ErrConfigCorrupt indicates the registry file exists but cannot be
	// decoded as JSON.
	ErrConfigCorrupt = errors.New("accounts config is corrupt")

	// ErrInvalidAccountID indicates an account id is empty or contains
	// characters outside [A-Za-z0-9_-].
	ErrInvalidAccountID = errors.New("invalid account id")

	// ErrUnknownAccount indicates the requested account id is not in the
	// registry.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrAccountDisabled indicates the requested account exists but is not
	// enabled.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrAccountRequired indicates a write operation was attempted without
	// an explicit account id.
	ErrAccountRequired = errors.New("account is required for this operation")

	// ErrNoEnabledAccounts indicates a read resolved to zero enabled
	// accounts.
	ErrNoEnabledAccounts = errors.New("no enabled accounts configured")
)
