package config

import (
	"fmt"
	"strings"
)

// ResolveForRead decides which accounts a read or search operation targets.
//
// With an explicit account id it returns exactly that account, failing with
// ErrUnknownAccount or ErrAccountDisabled as applicable. With an empty id
// it returns every enabled account in registry order, failing with
// ErrNoEnabledAccounts if there are none. The multi-account result is the
// entry point for fan-out aggregation.
func ResolveForRead(cfg *Config, accountID string) ([]Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID != "" {
		acct, err := resolveSingle(cfg, accountID)
		if err != nil {
			return nil, err
		}
		return []Account{*acct}, nil
	}

	enabled := cfg.EnabledAccounts()
	if len(enabled) == 0 {
		return nil, ErrNoEnabledAccounts
	}
	return enabled, nil
}

// ResolveForWrite decides which single account a write or admin operation
// targets. Write operations never default and never aggregate: a missing or
// blank account id fails with ErrAccountRequired so a destructive or sending
// operation can never silently act on an unintended account.
func ResolveForWrite(cfg *Config, accountID string) (*Account, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ErrAccountRequired
	}
	return resolveSingle(cfg, accountID)
}

func resolveSingle(cfg *Config, accountID string) (*Account, error) {
	acct := cfg.Find(accountID)
	if acct == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, accountID)
	}
	if !acct.Enabled {
		return nil, fmt.Errorf("%w: %q (complete authentication first)", ErrAccountDisabled, accountID)
	}
	return acct, nil
}
