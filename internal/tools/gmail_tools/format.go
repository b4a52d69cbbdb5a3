package gmail_tools

import (
	"fmt"
	"strings"

	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/manymail/manymail/internal/aggregate"
	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
)

// formatEmailSummary renders one email as a numbered list entry.
func formatEmailSummary(i int, e gmail.ParsedEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, e.AccountID, e.Subject)
	fmt.Fprintf(&b, "   From: %s\n", e.From)
	if e.Date != "" {
		fmt.Fprintf(&b, "   Date: %s\n", e.Date)
	}
	fmt.Fprintf(&b, "   ID: %s (Thread: %s)\n", e.ID, e.ThreadID)
	if e.Snippet != "" {
		fmt.Fprintf(&b, "   Snippet: %s\n", e.Snippet)
	}
	return b.String()
}

// appendFailures appends the per-account failure section to a rendered
// response. Partial failures stay visible even when another account
// produced the requested result.
func appendFailures(text string, failures []string) string {
	if len(failures) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\nAccount failures:\n")
	for _, msg := range failures {
		fmt.Fprintf(&b, "  - %s\n", msg)
	}
	return b.String()
}

// formatAggregateResult renders a fan-out result: the merged email list,
// the totals, and a per-account failure section when any account failed.
func formatAggregateResult(result aggregate.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Total Found: %d\n", result.TotalFound)
	fmt.Fprintf(&b, "Returned: %d\n\n", len(result.Emails))

	if len(result.Emails) == 0 {
		b.WriteString("No emails matched.\n")
	}
	for i, e := range result.Emails {
		b.WriteString(formatEmailSummary(i, e))
	}

	return appendFailures(b.String(), result.Errors)
}

// formatEmailDetail renders one email with its full body.
func formatEmailDetail(e gmail.ParsedEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s", e.AccountID)
	if e.AccountEmail != "" {
		fmt.Fprintf(&b, " (%s)", e.AccountEmail)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
	fmt.Fprintf(&b, "From: %s\n", e.From)
	if e.To != "" {
		fmt.Fprintf(&b, "To: %s\n", e.To)
	}
	if e.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", e.Date)
	}
	fmt.Fprintf(&b, "ID: %s (Thread: %s)\n", e.ID, e.ThreadID)
	if e.Body != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Body)
	} else if e.Snippet != "" {
		fmt.Fprintf(&b, "\nSnippet: %s\n", e.Snippet)
	}
	return b.String()
}

// formatThread renders a thread's messages in order.
func formatThread(threadID string, emails []gmail.ParsedEmail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thread %s (%d messages):\n\n", threadID, len(emails))
	for i, e := range emails {
		fmt.Fprintf(&b, "--- Message %d ---\n", i+1)
		b.WriteString(formatEmailDetail(e))
		b.WriteString("\n")
	}
	return b.String()
}

// formatLabels renders a label list grouped with IDs, for one account.
func formatLabels(accountID string, labels []*gmail_v1.Label) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Labels for account %s (%d):\n", accountID, len(labels))
	for _, l := range labels {
		fmt.Fprintf(&b, "  %s: %s", l.Id, l.Name)
		if l.Type == "system" {
			b.WriteString(" (system)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatAccountHealth renders the registry with per-account artifact health.
func formatAccountHealth(cfg *config.Config, healths []config.Health) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Configured accounts (%d):\n", len(healths))
	if cfg.DefaultAccount != "" {
		fmt.Fprintf(&b, "Default account: %s\n", cfg.DefaultAccount)
	}
	b.WriteString("\n")

	for _, h := range healths {
		fmt.Fprintf(&b, "- %s", h.Account.ID)
		if h.Account.Email != "" {
			fmt.Fprintf(&b, " <%s>", h.Account.Email)
		}
		if h.Account.DisplayName != "" {
			fmt.Fprintf(&b, " (%s)", h.Account.DisplayName)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  enabled: %t, credentials: %t, token: %t, ready: %t\n",
			h.Account.Enabled, h.HasCredentials, h.HasToken, h.Ready)
	}
	return b.String()
}
