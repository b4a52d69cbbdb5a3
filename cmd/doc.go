// Package cmd implements the command-line interface for manymail.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio
//   - accounts: Manage the account registry (list, add, auth)
//   - version: Display version information
package cmd
