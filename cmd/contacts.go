package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/outlook"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage per-sender Focused inbox overrides",
	}

	cmd.AddCommand(newContactsOverridesCmd())
	cmd.AddCommand(newContactsRouteCmd())

	return cmd
}

func newContactsOverridesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overrides",
		Short: "List senders with a Focused/Other routing override",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			contacts, err := account.Contacts().Overrides(ctx)
			if err != nil {
				return fmt.Errorf("failed to list overrides: %w", err)
			}

			for _, c := range contacts {
				routing := "other"
				if c.Focused != nil && *c.Focused {
					routing = "focused"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", routing, c)
			}
			return nil
		},
	}
}

func newContactsRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <email> {focused|other}",
		Short: "Route all future mail from a sender to Focused or Other",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var focused bool
			switch args[1] {
			case "focused":
				focused = true
			case "other":
				focused = false
			default:
				return fmt.Errorf("unknown routing %q, expected focused or other", args[1])
			}

			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			stored, err := account.Contacts().SetOverride(ctx, outlook.NewContact(args[0]), focused)
			if err != nil {
				return fmt.Errorf("failed to set override: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail from %s now routed to %s\n", stored.Email, args[1])
			return nil
		},
	}
}
