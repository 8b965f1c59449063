package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Render the whole hierarchy as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			forest, err := c.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if len(forest) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Hierarchy is empty.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(forest))
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the root, divisions and sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.client()
			if err != nil {
				return err
			}

			root, err := c.GetRoot(ctx)
			if err != nil {
				return err
			}
			divisions, err := c.GetDivisions(ctx)
			if err != nil {
				return err
			}
			sites, err := c.GetSites(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root == nil {
				fmt.Fprintln(out, styleWarn.Render("No root node."))
			} else {
				fmt.Fprintf(out, "%s %s %s\n", styleHeader.Render("ROOT"), root.Name, styleDim.Render(root.ID))
			}
			fmt.Fprintf(out, "\n%s (%d)\n", styleHeader.Render("DIVISIONS"), len(divisions))
			if len(divisions) > 0 {
				fmt.Fprint(out, renderTable(nodeHeaders, nodeRows(divisions)))
			}
			fmt.Fprintf(out, "\n%s (%d)\n", styleHeader.Render("SITES"), len(sites))
			if len(sites) > 0 {
				fmt.Fprint(out, renderTable(nodeHeaders, nodeRows(sites)))
			}
			return nil
		},
	}
}
