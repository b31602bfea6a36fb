package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/outlook"
)

func newAutoReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoreply",
		Short: "Show or set the mailbox's automatic reply",
	}

	cmd.AddCommand(newAutoReplyShowCmd())
	cmd.AddCommand(newAutoReplySetCmd())
	cmd.AddCommand(newAutoReplyOffCmd())

	return cmd
}

func newAutoReplyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current automatic reply message",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			message, err := account.AutoReplyMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch auto-reply settings: %w", err)
			}
			if message == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no automatic reply message set")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newAutoReplySetCmd() *cobra.Command {
	var (
		audience string
		from     string
		until    string
	)

	cmd := &cobra.Command{
		Use:   "set <message>",
		Short: "Enable automatic replies with the given message",
		Long: `Enable automatic replies. Without --from/--until the reply is active
immediately and indefinitely; with both, it is scheduled for that
window (RFC 3339 timestamps).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := outlook.AutoReplySettings{
				Message:  args[0],
				Audience: outlook.AutoReplyAudience(audience),
			}

			if (from == "") != (until == "") {
				return fmt.Errorf("--from and --until must be used together")
			}
			if from != "" {
				start, err := time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("invalid --from timestamp: %w", err)
				}
				end, err := time.Parse(time.RFC3339, until)
				if err != nil {
					return fmt.Errorf("invalid --until timestamp: %w", err)
				}
				settings.Status = outlook.AutoReplyScheduled
				settings.ScheduledStart = &start
				settings.ScheduledEnd = &end
			}

			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := account.SetAutoReply(ctx, settings); err != nil {
				return fmt.Errorf("failed to set auto-reply: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "automatic reply enabled")
			return nil
		},
	}

	cmd.Flags().StringVar(&audience, "audience", "all", "Who receives replies (none, contactsOnly, all)")
	cmd.Flags().StringVar(&from, "from", "", "Schedule start (RFC 3339)")
	cmd.Flags().StringVar(&until, "until", "", "Schedule end (RFC 3339)")

	return cmd
}

func newAutoReplyOffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Disable automatic replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			err = account.SetAutoReply(ctx, outlook.AutoReplySettings{
				Status: outlook.AutoReplyDisabled,
			})
			if err != nil {
				return fmt.Errorf("failed to disable auto-reply: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "automatic reply disabled")
			return nil
		},
	}
}
