// Package onboard implements the two-step OAuth onboarding workflow for
// accounts: Begin records a pending (disabled) registry entry and persists
// the client credentials, Finish exchanges the authorization code, persists
// the token, and promotes the entry to enabled.
//
// Neither step is atomic across its persisted artifacts; both are designed
// to be safely re-runnable instead.
package onboard
