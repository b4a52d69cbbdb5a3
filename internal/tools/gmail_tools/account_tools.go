package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/onboard"
	"github.com/manymail/manymail/internal/server"
	"github.com/manymail/manymail/internal/tools/common"
)

// RegisterAccountTools registers the account registry and onboarding tools.
// These are always available, even in read-only mode: onboarding mutates
// local configuration, never mailbox state.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List accounts tool
	listTool := mcp.NewTool("gmail_list_accounts",
		mcp.WithDescription("List configured Gmail accounts with their credential and token health"),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("gmail_list_accounts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	// Add account tool
	addTool := mcp.NewTool("gmail_add_account",
		mcp.WithDescription("Register a Gmail account and start its OAuth authorization. Returns the URL to visit."),
		mcp.WithString("accountId",
			mcp.Required(),
			mcp.Description("Identifier for the account (letters, digits, '-' and '_')"),
		),
		mcp.WithString("email",
			mcp.Description("Email address of the account, if known"),
		),
		mcp.WithString("credentials",
			mcp.Required(),
			mcp.Description("OAuth client credentials JSON (the downloaded client secret file contents)"),
		),
	)

	s.AddTool(addTool, common.InstrumentedToolHandler("gmail_add_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddAccount(ctx, request, sc)
		}))

	// Authenticate account tool
	authTool := mcp.NewTool("gmail_authenticate_account",
		mcp.WithDescription("Complete a pending account authorization with the code obtained from the OAuth consent page"),
		mcp.WithString("accountId",
			mcp.Required(),
			mcp.Description("Identifier of the account being authorized"),
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Authorization code from the consent page"),
		),
	)

	s.AddTool(authTool, common.InstrumentedToolHandler("gmail_authenticate_account", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthenticateAccount(ctx, request, sc)
		}))

	return nil
}

func handleListAccounts(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	cfg, err := config.Load(sc.Root())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	healths := make([]config.Health, 0, len(cfg.Accounts))
	for _, acct := range cfg.Accounts {
		healths = append(healths, config.CheckHealth(sc.Root(), acct))
	}

	return mcp.NewToolResultText(formatAccountHealth(cfg, healths)), nil
}

func handleAddAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, err := common.RequiredStringArg(args, "accountId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	credentials, err := common.RequiredStringArg(args, "credentials")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email := common.StringArg(args, "email", "")

	o := onboard.New(sc.Root(), sc.Logger())
	result, err := o.Begin(ctx, accountID, email, []byte(credentials))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add account: %v", err)), nil
	}

	text := fmt.Sprintf(`Account %q registered (disabled until authorized).

1. Visit this URL in your browser:
   %s

2. Sign in with the Google account and grant Gmail access
3. Copy the authorization code
4. Call gmail_authenticate_account with accountId=%q and the code`,
		result.Account.ID, result.AuthURL, result.Account.ID)

	return mcp.NewToolResultText(text), nil
}

func handleAuthenticateAccount(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accountID, err := common.RequiredStringArg(args, "accountId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := common.RequiredStringArg(args, "code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	o := onboard.New(sc.Root(), sc.Logger())
	acct, err := o.Finish(ctx, accountID, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to authenticate account: %v", err)), nil
	}

	// Drop any stale cached client so the fresh token is used.
	sc.InvalidateClient(acct.ID)

	text := fmt.Sprintf("Account %q authorized and enabled.", acct.ID)
	if acct.Email != "" {
		text += fmt.Sprintf(" Profile email: %s.", acct.Email)
	}
	return mcp.NewToolResultText(text), nil
}
