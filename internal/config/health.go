package config

import "os"

// Health is a derived, non-persisted view of an account's operational
// readiness. It is recomputed on demand for the account-listing surface and
// never gates resolution; missing artifacts surface later as Gmail API
// errors.
type Health struct {
	Account        Account
	HasCredentials bool
	HasToken       bool
	Ready          bool
}

// CheckHealth reports whether the account's credential and token artifacts
// exist on disk. Existence checks only, no content validation.
func CheckHealth(root string, acct Account) Health {
	paths := Paths(root, acct)
	h := Health{
		Account:        acct,
		HasCredentials: fileExists(paths.Credentials),
		HasToken:       fileExists(paths.Token),
	}
	h.Ready = acct.Enabled && h.HasCredentials && h.HasToken
	return h
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
