package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/onboard"
)

func newAccountsCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the Gmail account registry",
		Long: `Manage the accounts the MCP server can act on.

Adding an account is a two-step flow:

  1. manymail accounts add <id> <credentials-file>
     registers the account (disabled) and prints the authorization URL
  2. manymail accounts auth <id> <code>
     redeems the code from the consent page and enables the account`,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration root directory. Defaults to $MANYMAIL_CONFIG_DIR or ~/.config/manymail.")

	cmd.AddCommand(newAccountsListCmd(&configDir))
	cmd.AddCommand(newAccountsAddCmd(&configDir))
	cmd.AddCommand(newAccountsAuthCmd(&configDir))

	return cmd
}

func newAccountsListCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts and their artifact health",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveConfigDir(*configDir)
			if err != nil {
				return err
			}

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load account registry: %w", err)
			}

			if len(cfg.Accounts) == 0 {
				fmt.Println("No accounts configured. Add one with 'manymail accounts add'.")
				return nil
			}

			if cfg.DefaultAccount != "" {
				fmt.Printf("Default account: %s\n", cfg.DefaultAccount)
			}
			for _, acct := range cfg.Accounts {
				h := config.CheckHealth(root, acct)
				fmt.Printf("%s", acct.ID)
				if acct.Email != "" {
					fmt.Printf(" <%s>", acct.Email)
				}
				if acct.DisplayName != "" {
					fmt.Printf(" (%s)", acct.DisplayName)
				}
				fmt.Printf("\n  enabled: %t, credentials: %t, token: %t, ready: %t\n",
					acct.Enabled, h.HasCredentials, h.HasToken, h.Ready)
			}
			return nil
		},
	}
}

func newAccountsAddCmd(configDir *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "add <id> <credentials-file>",
		Short: "Register an account and print its authorization URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveConfigDir(*configDir)
			if err != nil {
				return err
			}

			credentials, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read credentials file: %w", err)
			}

			o := onboard.New(root, slog.Default())
			result, err := o.Begin(cmd.Context(), args[0], email, credentials)
			if err != nil {
				return fmt.Errorf("failed to add account: %w", err)
			}

			fmt.Printf(`Account %q registered (disabled until authorized).

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account and grant Gmail access
3. Copy the authorization code
4. Run: manymail accounts auth %s <code>
`, result.Account.ID, result.AuthURL, result.Account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account, if known")
	return cmd
}

func newAccountsAuthCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "auth <id> <code>",
		Short: "Complete a pending authorization and enable the account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveConfigDir(*configDir)
			if err != nil {
				return err
			}

			o := onboard.New(root, slog.Default())
			acct, err := o.Finish(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to authenticate account: %w", err)
			}

			fmt.Printf("Account %q authorized and enabled.\n", acct.ID)
			if acct.Email != "" {
				fmt.Printf("Profile email: %s\n", acct.Email)
			}
			return nil
		},
	}
}
