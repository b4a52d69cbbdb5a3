// Package gmail provides a per-account client for the Gmail API.
//
// Each Client is scoped to one configured account and authenticates with
// that account's OAuth artifacts. Messages are flattened into ParsedEmail
// values tagged with the originating account, which is the shape the
// multi-account merge in the aggregate package operates on.
//
// Capability surface: search and fetch messages (metadata or full body),
// fetch a thread's messages, label management, per-message label
// modification, archive, trash, drafts, raw RFC 2822 send, and profile
// lookup.
package gmail
