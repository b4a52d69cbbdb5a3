package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/instrumentation"
	"github.com/manymail/manymail/internal/logging"
	"github.com/manymail/manymail/internal/server"
	"github.com/manymail/manymail/internal/tools/gmail_tools"
)

// serveOptions holds the serve command configuration.
type serveOptions struct {
	configDir      string
	readOnly       bool
	logLevel       string
	logJSON        bool
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start the Model Context Protocol (MCP) server exposing the configured
Gmail accounts to AI assistants.

The transport is stdio, so all logging goes to stderr. Accounts are
resolved against the on-disk registry on every tool call; changes made
with 'manymail accounts' are picked up without a restart.

Safety Mode:
  With --read-only, write tools (send, draft, trash, archive, label
  changes) are not registered. Account onboarding tools stay available
  because they only mutate local configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "Configuration root directory. Defaults to $MANYMAIL_CONFIG_DIR or ~/.config/manymail.")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Register only read and account tools; skip all mailbox write tools")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON instead of text")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", false, "Serve Prometheus metrics on a dedicated port. Can also use MANYMAIL_METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use MANYMAIL_METRICS_ADDR env var.")

	return cmd
}

// newLogger builds the stderr logger for the serve command. Stdout carries
// the MCP transport and must stay clean.
func newLogger(level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	return slog.New(handler), nil
}

func resolveConfigDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	// DefaultRoot honors MANYMAIL_CONFIG_DIR.
	return config.DefaultRoot()
}

// Environment overrides for the metrics flags, matching the
// MANYMAIL_CONFIG_DIR naming.
const (
	envMetricsEnabled = "MANYMAIL_METRICS_ENABLED"
	envMetricsAddr    = "MANYMAIL_METRICS_ADDR"
)

// applyMetricsEnv fills metrics settings from the environment when the
// corresponding flags were left at their defaults.
func applyMetricsEnv(opts *serveOptions) {
	if !opts.metricsEnabled && os.Getenv(envMetricsEnabled) == "true" {
		opts.metricsEnabled = true
	}
	if addr := os.Getenv(envMetricsAddr); addr != "" && opts.metricsAddr == server.DefaultMetricsAddr {
		opts.metricsAddr = addr
	}
}

func runServe(opts serveOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(opts.logLevel, opts.logJSON)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	root, err := resolveConfigDir(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration directory: %w", err)
	}

	// Fail fast on a corrupt registry instead of on the first tool call.
	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load account registry: %w", err)
	}
	logger.Info("loaded account registry",
		"config_dir", root,
		"accounts", len(cfg.Accounts),
		"enabled", len(cfg.EnabledAccounts()),
	)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext := server.NewServerContext(shutdownCtx, root, logger, provider)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	applyMetricsEnv(&opts)

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
			ServerContext:           serverContext,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer func() {
			shutdownTimeout, cancelTimeout := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancelTimeout()
			if err := metricsServer.Shutdown(shutdownTimeout); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("manymail", version,
		mcpserver.WithToolCapabilities(true),
	)

	if opts.readOnly {
		logger.Info("starting server in read-only mode")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := gmail_tools.RegisterGmailTools(mcpSrv, serverContext, opts.readOnly); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
