// Package cmd implements the command-line interface for outlookmail.
//
// This package provides the following commands:
//   - messages: List, inspect and manage messages (list, show, move, copy, delete, mark)
//   - folders: List and manage mail folders (list, create, rename, delete)
//   - send: Compose and send a message
//   - contacts: Manage per-sender Focused inbox overrides
//   - autoreply: Show or set the mailbox's automatic reply
//   - version: Display version information
//
// All commands authenticate with a bearer token passed via --token or
// the OUTLOOK_TOKEN environment variable.
package cmd
