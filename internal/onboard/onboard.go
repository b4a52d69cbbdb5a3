package onboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
	"github.com/manymail/manymail/internal/google"
	"github.com/manymail/manymail/internal/logging"
)

// ErrTokenExchangeIncomplete indicates the OAuth exchange returned a
// payload with neither an access token nor a refresh token. The account is
// left disabled.
var ErrTokenExchangeIncomplete = errors.New("token exchange returned no usable token")

// Onboarder drives the two-step account onboarding workflow:
// absent -> pending (disabled) -> active (enabled).
//
// Exchange and FetchProfile are injectable so tests can stub the OAuth and
// Gmail collaborators; zero values use the real ones.
type Onboarder struct {
	Root   string
	Logger *slog.Logger

	Exchange     func(ctx context.Context, conf *oauth2.Config, authCode string) (*oauth2.Token, error)
	FetchProfile func(ctx context.Context, root string, acct config.Account) (string, error)
}

// New returns an Onboarder for the given config root with the real
// collaborators wired in.
func New(root string, logger *slog.Logger) *Onboarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Onboarder{
		Root:     root,
		Logger:   logger,
		Exchange: google.Exchange,
		FetchProfile: func(ctx context.Context, root string, acct config.Account) (string, error) {
			client, err := gmail.NewClient(ctx, root, acct, nil)
			if err != nil {
				return "", err
			}
			return client.Profile()
		},
	}
}

// BeginResult is the outcome of the first onboarding step.
type BeginResult struct {
	Account config.Account
	AuthURL string
}

// Begin creates (or overwrites) a pending, disabled registry entry for the
// account, persists its OAuth client credentials, and returns the
// authorization URL the user must visit. Idempotent: re-running for the
// same id refreshes the credentials file and the pending entry.
func (o *Onboarder) Begin(ctx context.Context, id, email string, credentialsJSON []byte) (*BeginResult, error) {
	if err := config.ValidateID(id); err != nil {
		return nil, err
	}

	conf, err := google.ParseCredentials(credentialsJSON)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(o.Root)
	if err != nil {
		return nil, err
	}

	acct := config.Account{ID: id, Email: email, Enabled: false}
	if existing := cfg.Find(id); existing != nil {
		acct.DisplayName = existing.DisplayName
		acct.CredentialPath = existing.CredentialPath
		acct.TokenPath = existing.TokenPath
	}

	paths := config.Paths(o.Root, acct)
	if err := os.MkdirAll(filepath.Dir(paths.Credentials), 0700); err != nil {
		return nil, fmt.Errorf("failed to create account directory: %w", err)
	}
	if err := os.WriteFile(paths.Credentials, credentialsJSON, 0600); err != nil {
		return nil, fmt.Errorf("failed to write credentials file: %w", err)
	}

	if err := config.Save(o.Root, cfg.Upsert(acct)); err != nil {
		return nil, err
	}

	o.Logger.Info("account onboarding started",
		logging.Account(id),
		slog.String("state", "pending"))

	return &BeginResult{Account: acct, AuthURL: google.AuthURL(conf)}, nil
}

// Finish completes onboarding: exchanges the authorization code, persists
// the token artifact, and promotes the registry entry to enabled. The
// profile verification afterwards is best-effort; its failure refreshes
// nothing but never reverts the enable. The first completed account becomes
// the registry default when none is set.
//
// Idempotent: re-running with a fresh code replaces the token and re-saves
// the entry.
func (o *Onboarder) Finish(ctx context.Context, id, authCode string) (*config.Account, error) {
	if err := config.ValidateID(id); err != nil {
		return nil, err
	}

	cfg, err := config.Load(o.Root)
	if err != nil {
		return nil, err
	}

	existing := cfg.Find(id)
	if existing == nil {
		return nil, fmt.Errorf("%w: %q (run account setup first)", config.ErrUnknownAccount, id)
	}
	acct := *existing

	paths := config.Paths(o.Root, acct)
	conf, err := google.LoadCredentials(paths.Credentials)
	if err != nil {
		return nil, err
	}

	tok, err := o.Exchange(ctx, conf, authCode)
	if err != nil {
		return nil, err
	}
	if tok == nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return nil, fmt.Errorf("%w for account %q", ErrTokenExchangeIncomplete, id)
	}

	if err := google.SaveToken(paths.Token, tok); err != nil {
		return nil, err
	}

	acct.Enabled = true

	// Verify access by fetching the profile address. Best-effort: on
	// failure the previously supplied email stands.
	if email, err := o.FetchProfile(ctx, o.Root, acct); err != nil {
		o.Logger.Warn("profile verification failed",
			logging.Account(id),
			logging.Err(err))
	} else if email != "" {
		acct.Email = email
	}

	updated := cfg.Upsert(acct)
	if updated.DefaultAccount == "" {
		updated.DefaultAccount = acct.ID
	}
	if err := config.Save(o.Root, updated); err != nil {
		return nil, err
	}

	o.Logger.Info("account onboarding completed",
		logging.Account(id),
		slog.String("state", "active"),
		logging.UserHash(acct.Email))

	return &acct, nil
}
