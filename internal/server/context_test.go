package server

import (
	"context"
	"testing"

	"github.com/manymail/manymail/internal/config"
)

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), t.TempDir(), nil, nil)

	if sc.IsShutdown() {
		t.Error("new server context should not be shut down")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("server context should report shut down")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("server context should be cancelled after shutdown")
	}

	// Second shutdown is a no-op.
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error: %v", err)
	}
}

func TestServerContext_ClientForMissingArtifacts(t *testing.T) {
	sc := NewServerContext(context.Background(), t.TempDir(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	acct := config.Account{ID: "work", Enabled: true}

	// No credentials on disk: client creation must fail, not panic.
	if _, err := sc.ClientFor(context.Background(), acct); err == nil {
		t.Error("expected error creating client without credential artifacts")
	}
}

func TestServerContext_InvalidateClientUnknownID(t *testing.T) {
	sc := NewServerContext(context.Background(), t.TempDir(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	// Invalidating an account that was never cached is safe.
	sc.InvalidateClient("nope")
}

func TestServerContext_MetricsNeverNil(t *testing.T) {
	sc := NewServerContext(context.Background(), t.TempDir(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	if sc.Metrics() == nil {
		t.Error("Metrics() should return a usable recorder without a provider")
	}
}
