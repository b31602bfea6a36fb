package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/outlook"
)

func newSendCmd() *cobra.Command {
	var (
		to          []string
		cc          []string
		bcc         []string
		subject     string
		body        string
		attachments []string
		importance  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Long: `Compose and send a message. At least one recipient across --to, --cc
and --bcc is required. The body is sent as HTML; attachments are read
from the local filesystem.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			builder := account.NewMessage().
				To(outlook.Recipients(to...)...).
				CC(outlook.Recipients(cc...)...).
				BCC(outlook.Recipients(bcc...)...).
				Subject(subject).
				Body(body)

			switch importance {
			case "":
			case "low":
				builder.Importance(outlook.ImportanceLow)
			case "normal":
				builder.Importance(outlook.ImportanceNormal)
			case "high":
				builder.Importance(outlook.ImportanceHigh)
			default:
				return fmt.Errorf("unknown importance %q, expected low, normal or high", importance)
			}

			for _, path := range attachments {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read attachment %s: %w", path, err)
				}
				builder.Attach(filepath.Base(path), data)
			}

			if err := builder.Send(ctx); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "Recipient email addresses")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "Carbon-copy email addresses")
	cmd.Flags().StringSliceVar(&bcc, "bcc", nil, "Blind-carbon-copy email addresses")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&body, "body", "", "Message body (HTML)")
	cmd.Flags().StringSliceVar(&attachments, "attach", nil, "Files to attach")
	cmd.Flags().StringVar(&importance, "importance", "", "Message importance (low, normal, high)")

	return cmd
}
