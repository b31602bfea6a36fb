// Package outlook is a typed client for a remote Outlook mailbox
// exposed over its REST API. It models messages, folders, contacts and
// attachments as plain entities, and translates ergonomic operations
// ("send a message", "rename a folder") into authenticated HTTP
// requests.
//
// An Account holds the bearer token and exposes one service per
// resource family:
//
//	account := outlook.NewAccount(token)
//
//	inbox, err := account.Messages().FromFolder(ctx, outlook.Inbox, 1)
//
//	err = account.NewMessage().
//		To(outlook.NewContact("user@example.com")).
//		Subject("Greetings").
//		Body("<p>Hello!</p>").
//		Send(ctx)
//
// Entities returned by read operations are immutable snapshots; they
// are never refreshed behind the caller's back. All failures surface as
// *Error values matchable with errors.Is against the package sentinels
// (ErrNotFound, ErrRateLimit, ...). Token acquisition, transport-level
// retry and timeout policy are the caller's concern: supply an
// oauth2.TokenSource or a custom *http.Client for those.
package outlook
