package gmail

import (
	"encoding/base64"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ParsedEmail is the flattened view of a Gmail message that the tool
// surface and the fan-out merge operate on. InternalDate is the provider's
// millisecond timestamp and is the only field the merge ordering depends
// on; AccountID/AccountEmail tag which mailbox the message came from.
type ParsedEmail struct {
	ID           string
	ThreadID     string
	InternalDate int64
	From         string
	To           string
	Subject      string
	Snippet      string
	Date         string
	Body         string
	AccountID    string
	AccountEmail string
}

// HeaderValue returns the value of a header in a message's payload,
// matching case-insensitively. Returns "" if the header is absent.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// walkParts visits every part of a message payload tree.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, p := range part.Parts {
		walkParts(p, fn)
	}
}

// decodePartBody decodes a part's base64url body data. Gmail uses RFC 4648
// base64url; some proxies re-encode with standard base64, so that is tried
// as a fallback.
func decodePartBody(part *gmail.MessagePart) string {
	if part == nil || part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

// extractBody returns the message body, preferring text/plain parts and
// falling back to text/html.
func extractBody(m *gmail.Message) string {
	if m == nil || m.Payload == nil {
		return ""
	}

	var plain, html strings.Builder
	walkParts(m.Payload, func(part *gmail.MessagePart) {
		switch {
		case strings.HasPrefix(part.MimeType, "text/plain"):
			plain.WriteString(decodePartBody(part))
		case strings.HasPrefix(part.MimeType, "text/html"):
			html.WriteString(decodePartBody(part))
		}
	})

	if plain.Len() > 0 {
		return plain.String()
	}
	return html.String()
}

// parseMessage flattens a Gmail message into a ParsedEmail tagged with the
// originating account. When body is false only metadata fields are
// populated.
func parseMessage(m *gmail.Message, accountID, accountEmail string, body bool) ParsedEmail {
	e := ParsedEmail{
		ID:           m.Id,
		ThreadID:     m.ThreadId,
		InternalDate: m.InternalDate,
		From:         HeaderValue(m, "From"),
		To:           HeaderValue(m, "To"),
		Subject:      HeaderValue(m, "Subject"),
		Date:         HeaderValue(m, "Date"),
		Snippet:      m.Snippet,
		AccountID:    accountID,
		AccountEmail: accountEmail,
	}
	if body {
		e.Body = extractBody(m)
	}
	return e
}
