package cmd

import (
	"testing"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/server"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		json    bool
		wantErr bool
	}{
		{name: "text info", level: "info"},
		{name: "json debug", level: "debug", json: true},
		{name: "warn", level: "warn"},
		{name: "error", level: "error"},
		{name: "invalid level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(tt.level, tt.json)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("newLogger(%q) error: %v", tt.level, err)
			}
			if logger == nil {
				t.Fatal("newLogger returned nil logger")
			}
		})
	}
}

func TestResolveConfigDir(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(config.EnvConfigDir, "/from/env")
		root, err := resolveConfigDir("/from/flag")
		if err != nil {
			t.Fatalf("resolveConfigDir error: %v", err)
		}
		if root != "/from/flag" {
			t.Errorf("root = %q, want /from/flag", root)
		}
	})

	t.Run("env when no flag", func(t *testing.T) {
		t.Setenv(config.EnvConfigDir, "/from/env")
		root, err := resolveConfigDir("")
		if err != nil {
			t.Fatalf("resolveConfigDir error: %v", err)
		}
		if root != "/from/env" {
			t.Errorf("root = %q, want /from/env", root)
		}
	})

	t.Run("default when neither", func(t *testing.T) {
		t.Setenv(config.EnvConfigDir, "")
		root, err := resolveConfigDir("")
		if err != nil {
			t.Fatalf("resolveConfigDir error: %v", err)
		}
		if root == "" {
			t.Error("expected non-empty default root")
		}
	})
}

func TestApplyMetricsEnv(t *testing.T) {
	t.Run("env enables and overrides addr", func(t *testing.T) {
		t.Setenv(envMetricsEnabled, "true")
		t.Setenv(envMetricsAddr, ":9191")

		opts := serveOptions{metricsAddr: server.DefaultMetricsAddr}
		applyMetricsEnv(&opts)

		if !opts.metricsEnabled {
			t.Error("MANYMAIL_METRICS_ENABLED=true should enable metrics")
		}
		if opts.metricsAddr != ":9191" {
			t.Errorf("metricsAddr = %q, want :9191", opts.metricsAddr)
		}
	})

	t.Run("flags win over env", func(t *testing.T) {
		t.Setenv(envMetricsEnabled, "false")
		t.Setenv(envMetricsAddr, ":9191")

		opts := serveOptions{metricsEnabled: true, metricsAddr: ":7070"}
		applyMetricsEnv(&opts)

		if !opts.metricsEnabled {
			t.Error("flag-enabled metrics must stay enabled")
		}
		if opts.metricsAddr != ":7070" {
			t.Errorf("metricsAddr = %q, want :7070", opts.metricsAddr)
		}
	})

	t.Run("no env leaves defaults", func(t *testing.T) {
		t.Setenv(envMetricsEnabled, "")
		t.Setenv(envMetricsAddr, "")

		opts := serveOptions{metricsAddr: server.DefaultMetricsAddr}
		applyMetricsEnv(&opts)

		if opts.metricsEnabled {
			t.Error("metrics should stay disabled without flag or env")
		}
		if opts.metricsAddr != server.DefaultMetricsAddr {
			t.Errorf("metricsAddr = %q, want default", opts.metricsAddr)
		}
	})
}

func TestAccountsCmdStructure(t *testing.T) {
	cmd := newAccountsCmd()

	want := map[string]bool{"list": false, "add": false, "auth": false}
	for _, sub := range cmd.Commands() {
		want[sub.Name()] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("accounts subcommand %q not registered", name)
		}
	}
}

func TestServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()

	for _, name := range []string{"config-dir", "read-only", "log-level", "log-json", "metrics-enabled", "metrics-addr"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("serve flag %q not registered", name)
		}
	}
}
