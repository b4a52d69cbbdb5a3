package gmail_tools

import (
	"strings"
	"testing"

	gmail_v1 "google.golang.org/api/gmail/v1"

	"github.com/manymail/manymail/internal/aggregate"
	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/gmail"
)

func TestFormatAggregateResult(t *testing.T) {
	result := aggregate.Result{
		Emails: []gmail.ParsedEmail{
			{ID: "m1", ThreadID: "t1", Subject: "Hello", From: "a@example.com", AccountID: "work", Snippet: "hi"},
			{ID: "m2", ThreadID: "t2", Subject: "Older", From: "b@example.com", AccountID: "personal"},
		},
		TotalFound: 5,
		Errors:     []string{"broken: token expired"},
	}

	out := formatAggregateResult(result)

	for _, want := range []string{
		"Total Found: 5",
		"Returned: 2",
		"[work] Hello",
		"[personal] Older",
		"Account failures:",
		"broken: token expired",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatAggregateResultEmpty(t *testing.T) {
	out := formatAggregateResult(aggregate.Result{})

	if !strings.Contains(out, "No emails matched.") {
		t.Errorf("empty result should say so:\n%s", out)
	}
	if strings.Contains(out, "Account failures:") {
		t.Errorf("no failure section without failures:\n%s", out)
	}
}

func TestAppendFailures(t *testing.T) {
	out := appendFailures("body text", nil)
	if out != "body text" {
		t.Errorf("no failures should leave text untouched, got:\n%s", out)
	}

	out = appendFailures("body text", []string{"broken: token expired"})
	for _, want := range []string{"body text", "Account failures:", "broken: token expired"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// A message found on one account must still surface the accounts that
// failed during the same fan-out.
func TestEmailDetailKeepsFailureDiagnostics(t *testing.T) {
	detail := formatEmailDetail(gmail.ParsedEmail{ID: "m1", Subject: "Hello", AccountID: "work"})

	out := appendFailures(detail, []string{"personal: token expired"})
	for _, want := range []string{"Subject: Hello", "Account failures:", "personal: token expired"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEmailDetail(t *testing.T) {
	e := gmail.ParsedEmail{
		ID:           "m1",
		ThreadID:     "t1",
		Subject:      "Quarterly report",
		From:         "boss@example.com",
		To:           "me@example.com",
		Date:         "Mon, 02 Jan 2006 15:04:05 -0700",
		Body:         "Please review.",
		AccountID:    "work",
		AccountEmail: "me@example.com",
	}

	out := formatEmailDetail(e)
	for _, want := range []string{"Account: work (me@example.com)", "Subject: Quarterly report", "Please review."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEmailDetailFallsBackToSnippet(t *testing.T) {
	out := formatEmailDetail(gmail.ParsedEmail{ID: "m1", Snippet: "short preview", AccountID: "work"})
	if !strings.Contains(out, "Snippet: short preview") {
		t.Errorf("expected snippet fallback:\n%s", out)
	}
}

func TestFormatLabels(t *testing.T) {
	labels := []*gmail_v1.Label{
		{Id: "INBOX", Name: "INBOX", Type: "system"},
		{Id: "Label_1", Name: "receipts"},
	}

	out := formatLabels("work", labels)
	if !strings.Contains(out, "Labels for account work (2):") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "INBOX: INBOX (system)") {
		t.Errorf("system label not marked:\n%s", out)
	}
	if !strings.Contains(out, "Label_1: receipts") {
		t.Errorf("user label missing:\n%s", out)
	}
}

func TestFormatAccountHealth(t *testing.T) {
	cfg := &config.Config{
		DefaultAccount: "work",
		Accounts: []config.Account{
			{ID: "work", Email: "me@example.com", Enabled: true},
			{ID: "pending", DisplayName: "New one"},
		},
	}
	healths := []config.Health{
		{Account: cfg.Accounts[0], HasCredentials: true, HasToken: true, Ready: true},
		{Account: cfg.Accounts[1], HasCredentials: true},
	}

	out := formatAccountHealth(cfg, healths)
	for _, want := range []string{
		"Configured accounts (2):",
		"Default account: work",
		"- work <me@example.com>",
		"enabled: true, credentials: true, token: true, ready: true",
		"- pending (New one)",
		"enabled: false, credentials: true, token: false, ready: false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
