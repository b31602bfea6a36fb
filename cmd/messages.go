package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/outlook"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List, inspect and manage messages",
	}

	cmd.AddCommand(newMessagesListCmd())
	cmd.AddCommand(newMessagesShowCmd())
	cmd.AddCommand(newMessagesMoveCmd())
	cmd.AddCommand(newMessagesCopyCmd())
	cmd.AddCommand(newMessagesDeleteCmd())
	cmd.AddCommand(newMessagesMarkCmd())

	return cmd
}

func newMessagesListCmd() *cobra.Command {
	var (
		folder string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages in a folder",
		Long: `List messages in a folder, newest first. The folder may be one of the
well-known names (Inbox, Drafts, SentItems, DeletedItems) or a folder
id; an empty folder lists across the whole mailbox.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var ref outlook.FolderRef
			if folder != "" {
				ref = outlook.ParseFolderRef(folder)
			}

			pager := account.Messages().List(ref)
			n := 0
			for n < limit && pager.Next(ctx) {
				msg := pager.Message()
				marker := " "
				if !msg.IsRead {
					marker = "*"
				}
				sender := ""
				if msg.Sender != nil {
					sender = msg.Sender.String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %-30s  %s\n", marker, msg.ID, sender, msg.Subject)
				n++
			}
			if err := pager.Err(); err != nil {
				return fmt.Errorf("failed to list messages: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "Inbox", "Folder name or id; empty for the whole mailbox")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of messages to list")
	return cmd
}

func newMessagesShowCmd() *cobra.Command {
	var saveAttachments string

	cmd := &cobra.Command{
		Use:   "show <message-id>",
		Short: "Show a single message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			msg, err := account.Messages().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch message: %w", err)
			}

			out := cmd.OutOrStdout()
			if msg.Sender != nil {
				fmt.Fprintf(out, "From:       %s\n", msg.Sender)
			}
			fmt.Fprintf(out, "To:         %s\n", joinContacts(msg.To))
			if len(msg.CC) > 0 {
				fmt.Fprintf(out, "Cc:         %s\n", joinContacts(msg.CC))
			}
			fmt.Fprintf(out, "Subject:    %s\n", msg.Subject)
			if !msg.Received.IsZero() {
				fmt.Fprintf(out, "Received:   %s\n", msg.Received.Local())
			}
			fmt.Fprintf(out, "Importance: %s\n", msg.Importance)
			if len(msg.Categories) > 0 {
				fmt.Fprintf(out, "Categories: %s\n", strings.Join(msg.Categories, ", "))
			}
			fmt.Fprintf(out, "\n%s\n", msg.Body)

			if saveAttachments == "" {
				return nil
			}

			attachments, err := account.Messages().Attachments(ctx, msg.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch attachments: %w", err)
			}
			for _, a := range attachments {
				target := filepath.Join(saveAttachments, a.Name)
				if err := os.WriteFile(target, a.Bytes, 0o600); err != nil {
					return fmt.Errorf("failed to save attachment %s: %w", a.Name, err)
				}
				fmt.Fprintf(out, "saved %s (%d bytes)\n", target, len(a.Bytes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&saveAttachments, "save-attachments", "", "Directory to save the message's attachments into")
	return cmd
}

func newMessagesMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <message-id> <folder>",
		Short: "Move a message to another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			moved, err := account.Messages().MoveTo(ctx, args[0], outlook.ParseFolderRef(args[1]))
			if err != nil {
				return fmt.Errorf("failed to move message: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved, new id %s\n", moved.ID)
			return nil
		},
	}
}

func newMessagesCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <message-id> <folder>",
		Short: "Copy a message into another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			copied, err := account.Messages().CopyTo(ctx, args[0], outlook.ParseFolderRef(args[1]))
			if err != nil {
				return fmt.Errorf("failed to copy message: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied, new id %s\n", copied.ID)
			return nil
		},
	}
}

func newMessagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := account.Messages().Delete(ctx, args[0]); err != nil {
				// Already gone counts as deleted
				if errors.Is(err, outlook.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "message not found (already deleted?)")
					return nil
				}
				return fmt.Errorf("failed to delete message: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func newMessagesMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "mark <message-id> {read|unread|focused|other}",
		Short:     "Mark a message read/unread or route it to Focused/Other",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"read", "unread", "focused", "other"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id := args[0]
			switch args[1] {
			case "read":
				err = account.Messages().SetRead(ctx, id, true)
			case "unread":
				err = account.Messages().SetRead(ctx, id, false)
			case "focused":
				err = account.Messages().SetFocused(ctx, id, true)
			case "other":
				err = account.Messages().SetFocused(ctx, id, false)
			default:
				return fmt.Errorf("unknown mark %q, expected read, unread, focused or other", args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to mark message: %w", err)
			}
			return nil
		},
	}
	return cmd
}

func joinContacts(contacts []outlook.Contact) string {
	parts := make([]string, 0, len(contacts))
	for _, c := range contacts {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}
