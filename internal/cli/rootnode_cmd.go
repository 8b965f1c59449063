package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Manage the root company node",
	}

	cmd.AddCommand(
		newRootInsertCmd(app),
		newRootGetCmd(app),
	)

	return cmd
}

func newRootInsertCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Create or update the root node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			if err := c.InsertRoot(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Upserted root node")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", `Root display name (default "Top Company")`)

	return cmd
}

func newRootGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the root node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			root, err := c.GetRoot(cmd.Context())
			if err != nil {
				return err
			}
			if root == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No root node. Create one with: hierarchyctl root insert")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNode(root))
			return nil
		},
	}
}
