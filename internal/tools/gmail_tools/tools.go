package gmail_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manymail/manymail/internal/aggregate"
	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
	"github.com/manymail/manymail/internal/server"
	"github.com/manymail/manymail/internal/tools/common"
)

const accountArgDescription = "Account ID to target. Omit to search across all enabled accounts."

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// Write tools are skipped when readOnly is set.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterAccountTools(s, sc); err != nil {
		return fmt.Errorf("failed to register account tools: %w", err)
	}

	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	// Search emails tool
	searchTool := mcp.NewTool("gmail_search_emails",
		mcp.WithDescription("Search emails across one or all configured Gmail accounts, merged newest-first"),
		mcp.WithString("account",
			mcp.Description(accountArgDescription),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox', 'from:user@example.com')"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results to return, %d-%d (default: %d)",
				aggregate.MinLimit, aggregate.MaxLimit, aggregate.DefaultLimit)),
		),
		mcp.WithBoolean("includeBody",
			mcp.Description("Include full message bodies instead of snippets (default: false)"),
		),
	)

	s.AddTool(searchTool, common.InstrumentedToolHandler("gmail_search_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Get email tool
	getEmailTool := mcp.NewTool("gmail_get_email",
		mcp.WithDescription("Fetch a single email by message ID, including its body"),
		mcp.WithString("account",
			mcp.Description(accountArgDescription),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to fetch"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandler("gmail_get_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	// Get thread tool
	getThreadTool := mcp.NewTool("gmail_get_thread",
		mcp.WithDescription("Fetch all messages of a thread by thread ID"),
		mcp.WithString("account",
			mcp.Description(accountArgDescription),
		),
		mcp.WithString("threadId",
			mcp.Required(),
			mcp.Description("The ID of the thread to fetch"),
		),
	)

	s.AddTool(getThreadTool, common.InstrumentedToolHandler("gmail_get_thread", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetThread(ctx, request, sc)
		}))

	// List labels tool
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List Gmail labels for one or all configured accounts"),
		mcp.WithString("account",
			mcp.Description(accountArgDescription),
		),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandler("gmail_list_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	return nil
}

// resolveReadAccounts loads the registry and resolves the account selector
// to the set of accounts a read should fan out over.
func resolveReadAccounts(root, selector string) ([]config.Account, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return config.ResolveForRead(cfg, selector)
}

// runAggregate fans fetch out over the accounts and records fan-out metrics.
func runAggregate(ctx context.Context, sc *server.ServerContext, accounts []config.Account, fetch aggregate.FetchFunc, limit int) aggregate.Result {
	result := aggregate.Run(ctx, accounts, fetch, limit)
	sc.Metrics().RecordFanout(ctx, len(accounts), len(result.Errors))
	return result
}

// timedFetch wraps a per-account fetch with Gmail operation metrics.
func timedFetch(sc *server.ServerContext, operation string, fetch aggregate.FetchFunc) aggregate.FetchFunc {
	return func(ctx context.Context, acct config.Account) ([]gmail.ParsedEmail, error) {
		start := time.Now()
		emails, err := fetch(ctx, acct)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		sc.Metrics().RecordGmailOperation(ctx, operation, acct.ID, outcome, time.Since(start))
		return emails, err
	}
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := aggregate.ClampLimit(common.IntArg(args, "limit", aggregate.DefaultLimit))
	includeBody := common.BoolArg(args, "includeBody", false)

	accounts, err := resolveReadAccounts(sc.Root(), common.AccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fetch := timedFetch(sc, "search", func(ctx context.Context, acct config.Account) ([]gmail.ParsedEmail, error) {
		client, err := sc.ClientFor(ctx, acct)
		if err != nil {
			return nil, err
		}
		return client.Search(query, int64(limit), includeBody)
	})

	result := runAggregate(ctx, sc, accounts, fetch, limit)
	return mcp.NewToolResultText(formatAggregateResult(result)), nil
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	accounts, err := resolveReadAccounts(sc.Root(), common.AccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Without an explicit account the lookup fans out; accounts that do
	// not own the message fail with "not found" and are contained.
	fetch := timedFetch(sc, "get", func(ctx context.Context, acct config.Account) ([]gmail.ParsedEmail, error) {
		client, err := sc.ClientFor(ctx, acct)
		if err != nil {
			return nil, err
		}
		email, err := client.GetEmail(messageID, true)
		if err != nil {
			return nil, err
		}
		return []gmail.ParsedEmail{email}, nil
	})

	result := runAggregate(ctx, sc, accounts, fetch, 1)
	if len(result.Emails) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("message %s not found in any resolved account:\n%s",
			messageID, formatAggregateResult(result))), nil
	}
	return mcp.NewToolResultText(appendFailures(formatEmailDetail(result.Emails[0]), result.Errors)), nil
}

func handleGetThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	threadID, err := common.RequiredStringArg(args, "threadId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	accounts, err := resolveReadAccounts(sc.Root(), common.AccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fetch := timedFetch(sc, "thread", func(ctx context.Context, acct config.Account) ([]gmail.ParsedEmail, error) {
		client, err := sc.ClientFor(ctx, acct)
		if err != nil {
			return nil, err
		}
		return client.ThreadEmails(threadID)
	})

	result := runAggregate(ctx, sc, accounts, fetch, aggregate.MaxLimit)
	if len(result.Emails) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("thread %s not found in any resolved account:\n%s",
			threadID, formatAggregateResult(result))), nil
	}

	// Threads read oldest-first.
	emails := result.Emails
	for i, j := 0, len(emails)-1; i < j; i, j = i+1, j-1 {
		emails[i], emails[j] = emails[j], emails[i]
	}
	return mcp.NewToolResultText(appendFailures(formatThread(threadID, emails), result.Errors)), nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	accounts, err := resolveReadAccounts(sc.Root(), common.AccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Label listing is per account, not merged by time, so it does not go
	// through the aggregator. Failures are still contained per account.
	output := ""
	var failures []string
	for _, acct := range accounts {
		client, err := sc.ClientFor(ctx, acct)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", acct.ID, err))
			continue
		}
		start := time.Now()
		labels, err := client.ListLabels()
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		sc.Metrics().RecordGmailOperation(ctx, "list_labels", acct.ID, outcome, time.Since(start))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", acct.ID, err))
			continue
		}
		output += formatLabels(acct.ID, labels) + "\n"
	}

	if len(failures) > 0 {
		output += "Account failures:\n"
		for _, msg := range failures {
			output += "  - " + msg + "\n"
		}
	}
	return mcp.NewToolResultText(output), nil
}
