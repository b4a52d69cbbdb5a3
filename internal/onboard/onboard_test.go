package onboard

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/google"
)

const testCredentials = `{
  "installed": {
    "client_id": "id-123.apps.googleusercontent.com",
    "client_secret": "secret-456",
    "redirect_uris": ["urn:ietf:wg:oauth:2.0:oob"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func testOnboarder(t *testing.T, tok *oauth2.Token, exchangeErr error) *Onboarder {
	t.Helper()
	o := New(t.TempDir(), nil)
	o.Exchange = func(_ context.Context, _ *oauth2.Config, _ string) (*oauth2.Token, error) {
		return tok, exchangeErr
	}
	o.FetchProfile = func(_ context.Context, _ string, _ config.Account) (string, error) {
		return "verified@example.com", nil
	}
	return o
}

func TestBegin(t *testing.T) {
	o := testOnboarder(t, nil, nil)

	res, err := o.Begin(context.Background(), "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)

	assert.Contains(t, res.AuthURL, "client_id=id-123")
	assert.False(t, res.Account.Enabled)

	// Credentials artifact persisted at the deterministic path.
	paths := config.Paths(o.Root, res.Account)
	data, err := os.ReadFile(paths.Credentials)
	require.NoError(t, err)
	assert.Equal(t, testCredentials, string(data))

	// Registry holds the pending entry.
	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	acct := cfg.Find("acct1")
	require.NotNil(t, acct)
	assert.False(t, acct.Enabled)
	assert.Equal(t, "e@x.com", acct.Email)
}

func TestBeginRejectsBadID(t *testing.T) {
	o := testOnboarder(t, nil, nil)

	for _, id := range []string{"", "a b", "a/b"} {
		_, err := o.Begin(context.Background(), id, "e@x.com", []byte(testCredentials))
		assert.ErrorIs(t, err, config.ErrInvalidAccountID, "id %q", id)
	}
}

func TestBeginIdempotent(t *testing.T) {
	o := testOnboarder(t, nil, nil)
	ctx := context.Background()

	_, err := o.Begin(ctx, "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)
	_, err = o.Begin(ctx, "acct1", "e2@x.com", []byte(testCredentials))
	require.NoError(t, err)

	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "e2@x.com", cfg.Accounts[0].Email)
}

func TestFinishEnablesAccount(t *testing.T) {
	o := testOnboarder(t, &oauth2.Token{AccessToken: "t"}, nil)
	ctx := context.Background()

	_, err := o.Begin(ctx, "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)

	acct, err := o.Finish(ctx, "acct1", "code")
	require.NoError(t, err)
	assert.True(t, acct.Enabled)
	assert.Equal(t, "verified@example.com", acct.Email)

	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	require.NotNil(t, cfg.Find("acct1"))
	assert.True(t, cfg.Find("acct1").Enabled)
	assert.Equal(t, "acct1", cfg.DefaultAccount, "first completed account becomes the default")

	// Token artifact persisted.
	tok, err := google.LoadToken(config.Paths(o.Root, *acct).Token)
	require.NoError(t, err)
	assert.Equal(t, "t", tok.AccessToken)
}

func TestFinishEmptyTokenPayload(t *testing.T) {
	o := testOnboarder(t, &oauth2.Token{}, nil)
	ctx := context.Background()

	_, err := o.Begin(ctx, "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)

	_, err = o.Finish(ctx, "acct1", "code")
	assert.ErrorIs(t, err, ErrTokenExchangeIncomplete)

	// The registry entry must remain disabled.
	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	require.NotNil(t, cfg.Find("acct1"))
	assert.False(t, cfg.Find("acct1").Enabled)
}

func TestFinishUnknownAccount(t *testing.T) {
	o := testOnboarder(t, &oauth2.Token{AccessToken: "t"}, nil)

	_, err := o.Finish(context.Background(), "ghost", "code")
	assert.ErrorIs(t, err, config.ErrUnknownAccount)
}

func TestFinishExchangeFailureLeavesStateUntouched(t *testing.T) {
	o := testOnboarder(t, nil, errors.New("exchange refused"))
	ctx := context.Background()

	_, err := o.Begin(ctx, "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)

	_, err = o.Finish(ctx, "acct1", "bad-code")
	require.Error(t, err)

	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	assert.False(t, cfg.Find("acct1").Enabled)
	assert.Empty(t, cfg.DefaultAccount)
}

func TestFinishProfileFailureStillEnables(t *testing.T) {
	o := testOnboarder(t, &oauth2.Token{RefreshToken: "r"}, nil)
	o.FetchProfile = func(_ context.Context, _ string, _ config.Account) (string, error) {
		return "", errors.New("profile fetch failed")
	}
	ctx := context.Background()

	_, err := o.Begin(ctx, "acct1", "e@x.com", []byte(testCredentials))
	require.NoError(t, err)

	acct, err := o.Finish(ctx, "acct1", "code")
	require.NoError(t, err)
	assert.True(t, acct.Enabled, "profile verification is best-effort, not a gate")
	assert.Equal(t, "e@x.com", acct.Email, "supplied email stands when verification fails")
}

func TestFinishKeepsExistingDefault(t *testing.T) {
	o := testOnboarder(t, &oauth2.Token{AccessToken: "t"}, nil)
	ctx := context.Background()

	_, err := o.Begin(ctx, "first", "a@x.com", []byte(testCredentials))
	require.NoError(t, err)
	_, err = o.Finish(ctx, "first", "code")
	require.NoError(t, err)

	_, err = o.Begin(ctx, "second", "b@x.com", []byte(testCredentials))
	require.NoError(t, err)
	_, err = o.Finish(ctx, "second", "code")
	require.NoError(t, err)

	cfg, err := config.Load(o.Root)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.DefaultAccount)
}
