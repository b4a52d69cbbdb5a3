package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Config {
	return &Config{
		DefaultAccount: "personal",
		Accounts: []Account{
			{ID: "personal", Email: "me@example.com", Enabled: true},
			{ID: "work", Email: "me@corp.example", Enabled: true},
			{ID: "old", Email: "old@example.com", Enabled: false},
		},
	}
}

func TestResolveForRead(t *testing.T) {
	cfg := testRegistry()

	t.Run("explicit account", func(t *testing.T) {
		accounts, err := ResolveForRead(cfg, "work")
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "work", accounts[0].ID)
	})

	t.Run("explicit unknown account", func(t *testing.T) {
		_, err := ResolveForRead(cfg, "nope")
		assert.ErrorIs(t, err, ErrUnknownAccount)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("explicit disabled account", func(t *testing.T) {
		_, err := ResolveForRead(cfg, "old")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("no account returns all enabled in registry order", func(t *testing.T) {
		accounts, err := ResolveForRead(cfg, "")
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "personal", accounts[0].ID)
		assert.Equal(t, "work", accounts[1].ID)
	})

	t.Run("whitespace id treated as omitted", func(t *testing.T) {
		accounts, err := ResolveForRead(cfg, "  ")
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("no enabled accounts", func(t *testing.T) {
		empty := &Config{Accounts: []Account{{ID: "old", Enabled: false}}}
		_, err := ResolveForRead(empty, "")
		assert.ErrorIs(t, err, ErrNoEnabledAccounts)
	})
}

func TestResolveForWrite(t *testing.T) {
	cfg := testRegistry()

	t.Run("explicit account", func(t *testing.T) {
		acct, err := ResolveForWrite(cfg, "personal")
		require.NoError(t, err)
		assert.Equal(t, "personal", acct.ID)
	})

	t.Run("missing account id", func(t *testing.T) {
		_, err := ResolveForWrite(cfg, "")
		assert.ErrorIs(t, err, ErrAccountRequired)
	})

	t.Run("blank account id", func(t *testing.T) {
		_, err := ResolveForWrite(cfg, "   ")
		assert.ErrorIs(t, err, ErrAccountRequired)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := ResolveForWrite(cfg, "nope")
		assert.ErrorIs(t, err, ErrUnknownAccount)
	})

	t.Run("disabled account never writable", func(t *testing.T) {
		_, err := ResolveForWrite(cfg, "old")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

// Disabled accounts must be unreachable through either resolution path.
func TestDisabledAccountNeverResolves(t *testing.T) {
	cfg := &Config{Accounts: []Account{
		{ID: "on", Enabled: true},
		{ID: "off", Enabled: false},
	}}

	accounts, err := ResolveForRead(cfg, "")
	require.NoError(t, err)
	for _, a := range accounts {
		assert.NotEqual(t, "off", a.ID)
	}

	_, err = ResolveForRead(cfg, "off")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	_, err = ResolveForWrite(cfg, "off")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}
