// Package google handles the OAuth side of account onboarding: parsing
// client credentials (installed or web layout), building authorization
// URLs, exchanging authorization codes, and persisting token artifacts.
//
// Token sources returned by this package write every transparent refresh
// through to disk synchronously, so a refresh issued mid-call survives an
// abrupt process exit.
package google
