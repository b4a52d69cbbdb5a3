package gmail_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
	"github.com/manymail/manymail/internal/server"
	"github.com/manymail/manymail/internal/tools/batch"
	"github.com/manymail/manymail/internal/tools/common"
)

const writeAccountArgDescription = "Account ID to act as. Required: write operations never fan out."

// RegisterEmailTools registers the email write tools. All of them are
// skipped when readOnly is set.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}

	// Send email tool
	sendTool := mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send an email from a specific account"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address, or comma-separated addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("CC addresses, comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC addresses, comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Send the body as HTML (default: false)"),
		),
	)

	s.AddTool(sendTool, common.InstrumentedToolHandler("gmail_send_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc, false)
		}))

	// Create draft tool
	draftTool := mcp.NewTool("gmail_create_draft",
		mcp.WithDescription("Create a draft email in a specific account"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address, or comma-separated addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("CC addresses, comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC addresses, comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body"),
		),
		mcp.WithBoolean("html",
			mcp.Description("Use an HTML body (default: false)"),
		),
	)

	s.AddTool(draftTool, common.InstrumentedToolHandler("gmail_create_draft", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc, true)
		}))

	// Trash email tool
	trashTool := mcp.NewTool("gmail_trash_email",
		mcp.WithDescription("Move one or more emails to the trash"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to trash"),
		),
	)

	s.AddTool(trashTool, common.InstrumentedToolHandler("gmail_trash_email", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMessageBatch(ctx, request, sc, "trash", func(client *gmail.Client, id string) (string, error) {
				if err := client.TrashMessage(id); err != nil {
					return "", err
				}
				return "trashed", nil
			})
		}))

	// Archive emails tool
	archiveTool := mcp.NewTool("gmail_archive_emails",
		mcp.WithDescription("Archive one or more emails by removing them from the inbox"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to archive"),
		),
	)

	s.AddTool(archiveTool, common.InstrumentedToolHandler("gmail_archive_emails", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMessageBatch(ctx, request, sc, "archive", func(client *gmail.Client, id string) (string, error) {
				if err := client.ArchiveMessage(id); err != nil {
					return "", err
				}
				return "archived", nil
			})
		}))

	// Modify labels tool
	modifyLabelsTool := mcp.NewTool("gmail_modify_labels",
		mcp.WithDescription("Add and/or remove labels on one or more emails"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to modify"),
		),
		mcp.WithString("addLabelIds",
			mcp.Description("Label IDs to add, comma-separated"),
		),
		mcp.WithString("removeLabelIds",
			mcp.Description("Label IDs to remove, comma-separated"),
		),
	)

	s.AddTool(modifyLabelsTool, common.InstrumentedToolHandler("gmail_modify_labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyLabels(ctx, request, sc)
		}))

	// Create label tool
	createLabelTool := mcp.NewTool("gmail_create_label",
		mcp.WithDescription("Create a new label in a specific account"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to create"),
		),
	)

	s.AddTool(createLabelTool, common.InstrumentedToolHandler("gmail_create_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	// Delete label tool
	deleteLabelTool := mcp.NewTool("gmail_delete_label",
		mcp.WithDescription("Delete a label from a specific account"),
		mcp.WithString("account",
			mcp.Required(),
			mcp.Description(writeAccountArgDescription),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("ID of the label to delete"),
		),
	)

	s.AddTool(deleteLabelTool, common.InstrumentedToolHandler("gmail_delete_label", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	return nil
}

// splitCommaList splits a comma-separated argument value. Entries are
// cleaned up by the caller via common.SanitizeStringList.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// resolveWriteClient resolves the explicit account selector and returns a
// client for it. Writes never fan out; a missing selector is an error.
func resolveWriteClient(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (*gmail.Client, *config.Account, error) {
	cfg, err := config.Load(sc.Root())
	if err != nil {
		return nil, nil, err
	}
	acct, err := config.ResolveForWrite(cfg, common.AccountFromArgs(args))
	if err != nil {
		return nil, nil, err
	}
	client, err := sc.ClientFor(ctx, *acct)
	if err != nil {
		return nil, nil, err
	}
	return client, acct, nil
}

func recordWrite(ctx context.Context, sc *server.ServerContext, operation, accountID string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	sc.Metrics().RecordGmailOperation(ctx, operation, accountID, outcome, time.Since(start))
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, asDraft bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, acct, err := resolveWriteClient(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	to, err := common.RequiredStringArg(args, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := common.RequiredStringArg(args, "subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := common.RequiredStringArg(args, "body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := &gmail.EmailMessage{
		To:      common.SanitizeStringList(splitCommaList(to)),
		Cc:      common.SanitizeStringList(splitCommaList(common.StringArg(args, "cc", ""))),
		Bcc:     common.SanitizeStringList(splitCommaList(common.StringArg(args, "bcc", ""))),
		Subject: subject,
		Body:    body,
		IsHTML:  common.BoolArg(args, "html", false),
	}

	start := time.Now()
	if asDraft {
		draftID, err := client.CreateDraft(msg)
		recordWrite(ctx, sc, "create_draft", acct.ID, start, err)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create draft: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Draft %s created in account %s", draftID, acct.ID)), nil
	}

	messageID, err := client.SendEmail(msg)
	recordWrite(ctx, sc, "send", acct.ID, start, err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message %s sent from account %s", messageID, acct.ID)), nil
}

// handleMessageBatch runs a per-message operation over a string-or-array
// messageIds argument, containing per-item failures.
func handleMessageBatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, operation string, fn func(client *gmail.Client, id string) (string, error)) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, acct, err := resolveWriteClient(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	results := batch.ProcessBatch(ids, func(id string) (string, error) {
		return fn(client, id)
	})
	recordWrite(ctx, sc, operation, acct.ID, start, batch.FailureError(results))

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleModifyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, acct, err := resolveWriteClient(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	addLabels := common.SanitizeStringList(splitCommaList(common.StringArg(args, "addLabelIds", "")))
	removeLabels := common.SanitizeStringList(splitCommaList(common.StringArg(args, "removeLabelIds", "")))
	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return mcp.NewToolResultError("at least one of addLabelIds or removeLabelIds is required"), nil
	}

	start := time.Now()
	results := batch.ProcessBatch(ids, func(id string) (string, error) {
		if err := client.ModifyMessage(id, addLabels, removeLabels); err != nil {
			return "", err
		}
		return "labels modified", nil
	})
	recordWrite(ctx, sc, "modify_labels", acct.ID, start, batch.FailureError(results))

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, acct, err := resolveWriteClient(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	label, err := client.CreateLabel(name)
	recordWrite(ctx, sc, "create_label", acct.ID, start, err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label %s created with ID %s in account %s", label.Name, label.Id, acct.ID)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, acct, err := resolveWriteClient(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labelID, err := common.RequiredStringArg(args, "labelId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start := time.Now()
	err = client.DeleteLabel(labelID)
	recordWrite(ctx, sc, "delete_label", acct.ID, start, err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label %s deleted from account %s", labelID, acct.ID)), nil
}
