package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ParseCredentials resolves an OAuth client credentials JSON document into
// an oauth2 config. Both the "installed" and "web" client layouts are
// accepted; the distinction is resolved here, once, and never branched on
// downstream.
func ParseCredentials(data []byte) (*oauth2.Config, error) {
	conf, err := google.ConfigFromJSON(data, gmail.MailGoogleComScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client credentials: %w", err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	return conf, nil
}

// LoadCredentials reads and parses the credentials artifact at path.
func LoadCredentials(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	return ParseCredentials(data)
}

// AuthURL builds the user authorization URL. Offline access with forced
// consent so Google always issues a refresh token.
func AuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token.
func Exchange(ctx context.Context, conf *oauth2.Config, authCode string) (*oauth2.Token, error) {
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return t, nil
}

// LoadToken reads the token artifact at path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken persists a token artifact at path, creating the parent
// directory as needed.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// persistingSource wraps a token source so that transparent refreshes are
// written through to the token file before the triggering call proceeds.
// A refresh that only lives in memory would be lost on shutdown and force
// re-onboarding.
type persistingSource struct {
	mu        sync.Mutex
	src       oauth2.TokenSource
	path      string
	last      *oauth2.Token
	onRefresh func()
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		merged := *tok
		// Google omits the refresh token on refresh responses; keep the one
		// we already hold.
		if merged.RefreshToken == "" && p.last != nil {
			merged.RefreshToken = p.last.RefreshToken
		}
		if err := SaveToken(p.path, &merged); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		tok = &merged
		if p.onRefresh != nil {
			p.onRefresh()
		}
	}

	p.last = tok
	return tok, nil
}

// TokenSource returns a token source for the token artifact at tokenPath
// that persists every refresh synchronously. onRefresh, when non-nil, is
// invoked after each persisted refresh.
func TokenSource(ctx context.Context, conf *oauth2.Config, tokenPath string, onRefresh func()) (oauth2.TokenSource, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		src:       conf.TokenSource(ctx, tok),
		path:      tokenPath,
		last:      tok,
		onRefresh: onRefresh,
	}, nil
}

// HTTPClient returns an HTTP client authenticated for the account whose
// artifacts live at the given paths. onRefresh, when non-nil, is invoked
// after each persisted token refresh.
func HTTPClient(ctx context.Context, credentialsPath, tokenPath string, onRefresh func()) (*http.Client, error) {
	conf, err := LoadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}
	ts, err := TokenSource(ctx, conf, tokenPath, onRefresh)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
