// Package gmail_tools provides MCP (Model Context Protocol) tools for
// working with one or many Gmail accounts through a single server.
//
// Read tools accept an optional account selector. When it is omitted they
// fan out across every enabled account and merge the results newest-first;
// a failing account contributes a labeled diagnostic instead of aborting
// the call:
//   - gmail_search_emails: Search emails, merged across accounts
//   - gmail_get_email: Fetch a single message with its body
//   - gmail_get_thread: Fetch all messages of a thread
//   - gmail_list_labels: List labels per account
//
// Write tools require an explicit account and never fan out:
//   - gmail_send_email, gmail_create_draft
//   - gmail_trash_email, gmail_archive_emails (single ID or batch)
//   - gmail_modify_labels, gmail_create_label, gmail_delete_label
//
// Account tools manage the registry and the two-step OAuth onboarding:
//   - gmail_list_accounts: Registry entries with artifact health
//   - gmail_add_account: Register an account and obtain the consent URL
//   - gmail_authenticate_account: Redeem the consent code and enable
//
// All tools resolve accounts against the on-disk registry on every call,
// so edits made by the CLI are picked up without a restart.
package gmail_tools
