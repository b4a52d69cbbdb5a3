package google

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const installedCredentials = `{
  "installed": {
    "client_id": "id-123.apps.googleusercontent.com",
    "client_secret": "secret-456",
    "redirect_uris": ["urn:ietf:wg:oauth:2.0:oob", "http://localhost"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

const webCredentials = `{
  "web": {
    "client_id": "id-789.apps.googleusercontent.com",
    "client_secret": "secret-000",
    "redirect_uris": ["https://example.com/callback"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func TestParseCredentials(t *testing.T) {
	t.Run("installed layout", func(t *testing.T) {
		conf, err := ParseCredentials([]byte(installedCredentials))
		require.NoError(t, err)
		assert.Equal(t, "id-123.apps.googleusercontent.com", conf.ClientID)
		assert.Equal(t, "secret-456", conf.ClientSecret)
		assert.NotEmpty(t, conf.RedirectURL)
	})

	t.Run("web layout", func(t *testing.T) {
		conf, err := ParseCredentials([]byte(webCredentials))
		require.NoError(t, err)
		assert.Equal(t, "id-789.apps.googleusercontent.com", conf.ClientID)
		assert.Equal(t, "https://example.com/callback", conf.RedirectURL)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseCredentials([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestAuthURL(t *testing.T) {
	conf, err := ParseCredentials([]byte(installedCredentials))
	require.NoError(t, err)

	url := AuthURL(conf)
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "client_id=id-123")
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}

	require.NoError(t, SaveToken(path, tok))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, loaded.AccessToken)
	assert.Equal(t, tok.RefreshToken, loaded.RefreshToken)
	assert.True(t, tok.Expiry.Equal(loaded.Expiry))
}

func TestLoadTokenMissing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// staticSource mimics the oauth2 transport handing back a refreshed token
// without a refresh token, as Google does.
type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestPersistingSourceWritesRefreshThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	original := &oauth2.Token{AccessToken: "old-access", RefreshToken: "keep-me"}
	require.NoError(t, SaveToken(path, original))

	refreshed := &oauth2.Token{AccessToken: "new-access", TokenType: "Bearer"}
	src := &persistingSource{
		src:  staticSource{tok: refreshed},
		path: path,
		last: original,
	}

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new-access", got.AccessToken)
	assert.Equal(t, "keep-me", got.RefreshToken, "refresh token must survive a refresh response that omits it")

	// The merged token must already be on disk.
	onDisk, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "new-access", onDisk.AccessToken)
	assert.Equal(t, "keep-me", onDisk.RefreshToken)
}

func TestPersistingSourceNoRewriteWhenUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "same", RefreshToken: "r"}
	require.NoError(t, SaveToken(path, tok))

	src := &persistingSource{src: staticSource{tok: tok}, path: path, last: tok}

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "same", got.AccessToken)
}

func TestPersistingSourceRefreshHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	original := &oauth2.Token{AccessToken: "old-access", RefreshToken: "r"}
	require.NoError(t, SaveToken(path, original))

	refreshes := 0
	src := &persistingSource{
		src:       staticSource{tok: &oauth2.Token{AccessToken: "new-access"}},
		path:      path,
		last:      original,
		onRefresh: func() { refreshes++ },
	}

	_, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, refreshes, "hook must fire once per persisted refresh")

	// A second call hands back the same access token: no refresh, no hook.
	_, err = src.Token()
	require.NoError(t, err)
	assert.Equal(t, 1, refreshes)
}

func TestPersistingSourceNilHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	original := &oauth2.Token{AccessToken: "old-access", RefreshToken: "r"}
	require.NoError(t, SaveToken(path, original))

	src := &persistingSource{
		src:  staticSource{tok: &oauth2.Token{AccessToken: "new-access"}},
		path: path,
		last: original,
	}

	_, err := src.Token()
	require.NoError(t, err)
}
