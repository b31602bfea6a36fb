package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/outlookmail/internal/outlook"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List and manage mail folders",
	}

	cmd.AddCommand(newFoldersListCmd())
	cmd.AddCommand(newFoldersCreateCmd())
	cmd.AddCommand(newFoldersRenameCmd())
	cmd.AddCommand(newFoldersDeleteCmd())

	return cmd
}

func newFoldersListCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders",
		Long: `List the mailbox's top-level folders, or the children of --parent.
Each line shows the folder id, unread/total counts and the display
name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var folders []outlook.Folder
			if parent == "" {
				folders, err = account.Folders().All(ctx)
			} else {
				folders, err = account.Folders().Subfolders(ctx, outlook.ParseFolderRef(parent))
			}
			if err != nil {
				return fmt.Errorf("failed to list folders: %w", err)
			}

			for _, f := range folders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %4d/%-4d  %s\n", f.ID, f.UnreadItemCount, f.TotalItemCount, f.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "List the children of this folder instead of the top level")
	return cmd
}

func newFoldersCreateCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var parentRef outlook.FolderRef
			if parent != "" {
				parentRef = outlook.ParseFolderRef(parent)
			}

			folder, err := account.Folders().Create(ctx, parentRef, args[0])
			if err != nil {
				return fmt.Errorf("failed to create folder: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", folder.Name, folder.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Create the folder under this folder instead of the top level")
	return cmd
}

func newFoldersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <new-name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			folder, err := account.Folders().Rename(ctx, outlook.ParseFolderRef(args[0]), args[1])
			if err != nil {
				return fmt.Errorf("failed to rename folder: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed to %s\n", folder.Name)
			return nil
		},
	}
}

func newFoldersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			account, cleanup, err := newAccount(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := account.Folders().Delete(ctx, outlook.ParseFolderRef(args[0])); err != nil {
				return fmt.Errorf("failed to delete folder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}
