package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	// EnvConfigDir overrides the default config root directory.
	EnvConfigDir = "MANYMAIL_CONFIG_DIR"

	// RegistryFileName is the name of the registry file under the config root.
	RegistryFileName = "accounts.json"

	// AccountsDirName is the per-account subdirectory under the config root.
	AccountsDirName = "accounts"

	// CredentialsFileName is the OAuth client credentials artifact name.
	CredentialsFileName = "credentials.json"

	// TokenFileName is the OAuth token artifact name.
	TokenFileName = "token.json"
)

// idPattern constrains account ids so they are safe as directory names.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Account represents one configured Gmail mailbox.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Enabled     bool   `json:"enabled"`

	// CredentialPath and TokenPath override the default per-account layout
	// when set. Most installations leave them empty.
	CredentialPath string `json:"credentialPath,omitempty"`
	TokenPath      string `json:"tokenPath,omitempty"`
}

// Config is the durable account registry, persisted as accounts.json under
// the config root. The file layout is a contract external tooling depends on.
type Config struct {
	DefaultAccount string    `json:"defaultAccount,omitempty"`
	Accounts       []Account `json:"accounts"`
}

// AccountPaths holds the resolved filesystem locations of an account's
// OAuth artifacts.
type AccountPaths struct {
	Dir         string
	Credentials string
	Token       string
}

// DefaultRoot returns the config root directory, honoring the
// MANYMAIL_CONFIG_DIR environment variable.
func DefaultRoot() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return filepath.Join(base, "manymail"), nil
}

// ValidateID checks that an account id is non-empty and matches
// [A-Za-z0-9_-]+.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidAccountID)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q (allowed: letters, digits, underscore, hyphen)", ErrInvalidAccountID, id)
	}
	return nil
}

// RegistryPath returns the location of the registry file under root.
func RegistryPath(root string) string {
	return filepath.Join(root, RegistryFileName)
}

// Paths resolves the credential and token locations for an account,
// honoring per-account overrides and otherwise deriving the deterministic
// layout <root>/accounts/<id>/.
func Paths(root string, acct Account) AccountPaths {
	dir := filepath.Join(root, AccountsDirName, acct.ID)
	p := AccountPaths{
		Dir:         dir,
		Credentials: filepath.Join(dir, CredentialsFileName),
		Token:       filepath.Join(dir, TokenFileName),
	}
	if acct.CredentialPath != "" {
		p.Credentials = acct.CredentialPath
	}
	if acct.TokenPath != "" {
		p.Token = acct.TokenPath
	}
	return p
}

// Load reads the registry from root. A missing registry file is not an
// error: an empty registry is created, persisted, and returned. A present
// but undecodable file fails with ErrConfigCorrupt.
//
// If the persisted defaultAccount references an id that no longer exists
// (e.g. after external edits), the default is cleared rather than treated
// as an error.
//
// The registry file is not locked; single-process usage is assumed.
func Load(root string) (*Config, error) {
	path := RegistryPath(root)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{Accounts: []Account{}}
		if err := Save(root, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigCorrupt, path, err)
	}

	if cfg.DefaultAccount != "" && cfg.Find(cfg.DefaultAccount) == nil {
		cfg.DefaultAccount = ""
	}

	return &cfg, nil
}

// Save persists the full registry, overwriting prior state. The write goes
// through a temp file and rename so a reader never observes a half-written
// registry.
func Save(root string, cfg *Config) error {
	if err := os.MkdirAll(root, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accounts config: %w", err)
	}
	data = append(data, '\n')

	path := RegistryPath(root)
	tmp, err := os.CreateTemp(root, RegistryFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write accounts config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write accounts config: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on accounts config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace accounts config: %w", err)
	}
	return nil
}

// Find returns the account with the given id, or nil.
func (c *Config) Find(id string) *Account {
	for i := range c.Accounts {
		if c.Accounts[i].ID == id {
			return &c.Accounts[i]
		}
	}
	return nil
}

// Upsert returns a copy of the registry where an account matching acct.ID
// is replaced in place (preserving position) or appended if absent. The
// receiver is not modified and nothing is persisted.
func (c *Config) Upsert(acct Account) *Config {
	out := &Config{
		DefaultAccount: c.DefaultAccount,
		Accounts:       make([]Account, len(c.Accounts)),
	}
	copy(out.Accounts, c.Accounts)

	for i := range out.Accounts {
		if out.Accounts[i].ID == acct.ID {
			out.Accounts[i] = acct
			return out
		}
	}
	out.Accounts = append(out.Accounts, acct)
	return out
}

// EnabledAccounts returns the enabled accounts in registry order.
func (c *Config) EnabledAccounts() []Account {
	var out []Account
	for _, a := range c.Accounts {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}
