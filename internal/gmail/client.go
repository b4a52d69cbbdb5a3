package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/manymail/manymail/internal/config"
	"github.com/manymail/manymail/internal/google"
)

// metadataHeaders are the headers requested for metadata-only fetches.
var metadataHeaders = []string{"From", "To", "Subject", "Date"}

// Client wraps the Gmail Users service for one configured account.
type Client struct {
	svc     *gmail.UsersService
	account config.Account
}

// NewClient creates a Gmail client for an account using the OAuth artifacts
// under the config root. onRefresh, when non-nil, is invoked after each
// persisted token refresh.
func NewClient(ctx context.Context, root string, acct config.Account, onRefresh func()) (*Client, error) {
	paths := config.Paths(root, acct)

	httpClient, err := google.HTTPClient(ctx, paths.Credentials, paths.Token, onRefresh)
	if err != nil {
		return nil, fmt.Errorf("no usable OAuth material for account %s: %w", acct.ID, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service for account %s: %w", acct.ID, err)
	}

	return &Client{svc: svc.Users, account: acct}, nil
}

// Account returns the account this client is associated with.
func (c *Client) Account() config.Account {
	return c.account
}

// Search lists messages matching a Gmail search query, fetching up to
// maxResults messages across result pages. With fullBody false only message
// metadata (headers, snippet, internal date) is fetched.
func (c *Client) Search(query string, maxResults int64, fullBody bool) ([]ParsedEmail, error) {
	var ids []string
	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		// Gmail API caps page size at 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	emails := make([]ParsedEmail, 0, len(ids))
	for _, id := range ids {
		e, err := c.GetEmail(id, fullBody)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, nil
}

// GetEmail fetches one message and flattens it.
func (c *Client) GetEmail(messageID string, fullBody bool) (ParsedEmail, error) {
	if messageID == "" {
		return ParsedEmail{}, fmt.Errorf("messageID is required")
	}

	req := c.svc.Messages.Get("me", messageID)
	if fullBody {
		req = req.Format("full")
	} else {
		req = req.Format("metadata").MetadataHeaders(metadataHeaders...)
	}

	msg, err := req.Do()
	if err != nil {
		return ParsedEmail{}, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return parseMessage(msg, c.account.ID, c.account.Email, fullBody), nil
}

// ThreadEmails fetches a thread and flattens every message in it, in the
// order the provider returns them.
func (c *Client) ThreadEmails(threadID string) ([]ParsedEmail, error) {
	if threadID == "" {
		return nil, fmt.Errorf("threadID is required")
	}

	thread, err := c.svc.Threads.Get("me", threadID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}

	emails := make([]ParsedEmail, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		emails = append(emails, parseMessage(m, c.account.ID, c.account.Email, true))
	}
	return emails, nil
}

// ListLabels lists all labels in the account.
func (c *Client) ListLabels() ([]*gmail.Label, error) {
	res, err := c.svc.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return res.Labels, nil
}

// CreateLabel creates a user label with the given name.
func (c *Client) CreateLabel(name string) (*gmail.Label, error) {
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}
	label, err := c.svc.Labels.Create("me", &gmail.Label{Name: name}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return label, nil
}

// DeleteLabel deletes a label by id.
func (c *Client) DeleteLabel(labelID string) error {
	if labelID == "" {
		return fmt.Errorf("labelID is required")
	}
	if err := c.svc.Labels.Delete("me", labelID).Do(); err != nil {
		return fmt.Errorf("failed to delete label %s: %w", labelID, err)
	}
	return nil
}

// ModifyMessage adds and removes label ids on a message.
func (c *Client) ModifyMessage(messageID string, addLabelIDs, removeLabelIDs []string) error {
	if messageID == "" {
		return fmt.Errorf("messageID is required")
	}
	_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to modify message %s: %w", messageID, err)
	}
	return nil
}

// ArchiveMessage removes a message from the inbox.
func (c *Client) ArchiveMessage(messageID string) error {
	return c.ModifyMessage(messageID, nil, []string{"INBOX"})
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(messageID string) error {
	if messageID == "" {
		return fmt.Errorf("messageID is required")
	}
	if _, err := c.svc.Messages.Trash("me", messageID).Do(); err != nil {
		return fmt.Errorf("failed to trash message %s: %w", messageID, err)
	}
	return nil
}

// Profile fetches the authenticated profile's email address.
func (c *Client) Profile() (string, error) {
	profile, err := c.svc.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// EmailMessage represents an email to be sent or drafted.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool
}

// encodeRFC2047 encodes a string for use in email headers according to
// RFC 2047. Necessary for non-ASCII characters in subjects.
func encodeRFC2047(s string) string {
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}

// buildRaw assembles an RFC 2822 message and encodes it in the base64url
// form the Gmail API expects.
func buildRaw(msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	var b strings.Builder

	b.WriteString("To: ")
	b.WriteString(strings.Join(msg.To, ", "))
	b.WriteString("\r\n")

	if len(msg.Cc) > 0 {
		b.WriteString("Cc: ")
		b.WriteString(strings.Join(msg.Cc, ", "))
		b.WriteString("\r\n")
	}

	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: ")
		b.WriteString(strings.Join(msg.Bcc, ", "))
		b.WriteString("\r\n")
	}

	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(msg.Subject))
	b.WriteString("\r\n")

	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// SendEmail sends an email through the Gmail API and returns the sent
// message id.
func (c *Client) SendEmail(msg *EmailMessage) (string, error) {
	raw, err := buildRaw(msg)
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// CreateDraft creates a draft and returns the draft id.
func (c *Client) CreateDraft(msg *EmailMessage) (string, error) {
	raw, err := buildRaw(msg)
	if err != nil {
		return "", err
	}

	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return draft.Id, nil
}
