package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
	"github.com/manymail/manymail/internal/instrumentation"
	"github.com/manymail/manymail/internal/logging"
)

// ServerContext holds shared state for the MCP server: the configuration
// root, a per-account Gmail client cache, and the instrumentation provider.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	root    string
	logger  *slog.Logger
	clients map[string]*gmail.Client
	instr   *instrumentation.Provider
	mu      sync.RWMutex
	down    bool
}

// NewServerContext creates a new server context rooted at the given
// configuration directory. Clients are lazily created on first use.
func NewServerContext(ctx context.Context, root string, logger *slog.Logger, instr *instrumentation.Provider) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = slog.Default()
	}

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		root:    root,
		logger:  logger,
		clients: make(map[string]*gmail.Client),
		instr:   instr,
	}
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Root returns the configuration root directory.
func (sc *ServerContext) Root() string {
	return sc.root
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the instrumentation metrics recorder. Never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.instr == nil {
		return &instrumentation.Metrics{}
	}
	return sc.instr.Metrics()
}

// ClientFor returns a Gmail client for the account, creating and caching
// one on first use. Cached clients are keyed by account ID so repeated
// tool calls reuse the underlying authenticated HTTP client.
func (sc *ServerContext) ClientFor(ctx context.Context, acct config.Account) (*gmail.Client, error) {
	sc.mu.RLock()
	client, ok := sc.clients[acct.ID]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.clients[acct.ID]; ok {
		return client, nil
	}

	client, err := gmail.NewClient(ctx, sc.root, acct, func() {
		sc.Metrics().RecordTokenRefresh(sc.ctx, acct.ID)
	})
	if err != nil {
		return nil, err
	}

	sc.logger.Debug("created Gmail client",
		logging.Account(acct.ID),
	)
	sc.clients[acct.ID] = client
	return client, nil
}

// InvalidateClient drops any cached client for the account. Called after
// re-authentication so the next use picks up the fresh token.
func (sc *ServerContext) InvalidateClient(accountID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.clients, accountID)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.down
}

// Shutdown cancels the server context and marks it as shut down.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.down {
		return nil
	}

	sc.down = true
	sc.cancel()
	return nil
}
