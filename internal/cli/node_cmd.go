package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/models"
)

// newChildCmd builds the "division" and "site" command groups.
func newChildCmd(app *App, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}
	cmd.AddCommand(newChildInsertCmd(app, models.NodeType(use)))
	return cmd
}

func newChildInsertCmd(app *App, nodeType models.NodeType) *cobra.Command {
	var parentShortCode, parentID, shortCode string

	cmd := &cobra.Command{
		Use:   "insert NAME",
		Short: fmt.Sprintf("Create or update a %s", nodeType),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.client()
			if err != nil {
				return err
			}
			if parentID == "" {
				if parentID, err = resolveParentID(ctx, c, parentShortCode); err != nil {
					return err
				}
			}

			name := args[0]
			var code string
			switch {
			case shortCode != "":
				code = shortCode
				err = c.InsertNode(ctx, models.NodeCreate{
					ShortCode:       shortCode,
					Name:            name,
					ParentShortCode: parentShortCode,
					ParentID:        parentID,
					NodeType:        nodeType,
				})
			case nodeType == models.NodeTypeDivision:
				code, err = c.InsertDivision(ctx, name, parentShortCode, parentID)
			default:
				code, err = c.InsertSite(ctx, name, parentShortCode, parentID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Upserted %s %s (%s)\n", nodeType, name, code)
			return nil
		},
	}

	defaultParent := ""
	if nodeType == models.NodeTypeDivision {
		defaultParent = models.RootShortCode
	}
	addParentFlags(cmd.Flags(), &parentShortCode, &parentID, defaultParent)
	cmd.Flags().StringVar(&shortCode, "short-code", "", "Short code to use instead of deriving one from NAME")
	if defaultParent == "" {
		_ = cmd.MarkFlagRequired("parent-short-code")
	}

	return cmd
}

// resolveParentID looks up the id of the node with the given short code.
func resolveParentID(ctx context.Context, c client.Client, shortCode string) (string, error) {
	if shortCode == "" {
		return "", &client.ValidationError{Field: "parent-short-code", Message: "cannot be empty"}
	}
	nodes, err := c.GetNodes(ctx, client.Eq(client.FieldShortCode, shortCode))
	if err != nil {
		return "", fmt.Errorf("looking up parent %q: %w", shortCode, err)
	}
	if len(nodes) == 0 || nodes[0].ID == "" {
		return "", fmt.Errorf("parent %q not found", shortCode)
	}
	return nodes[0].ID, nil
}

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Inspect and archive nodes",
	}

	cmd.AddCommand(
		newNodeGetCmd(app),
		newNodeListCmd(app),
		newNodeArchiveCmd(app, "archive", true),
		newNodeArchiveCmd(app, "unarchive", false),
	)

	return cmd
}

func newNodeGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a node by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			n, err := c.GetNode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderNode(n))
			return nil
		},
	}
}

func newNodeListCmd(app *App) *cobra.Command {
	nodeType := nodeTypeFlag(nodeTypeAll)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List non-root nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.client()
			if err != nil {
				return err
			}

			var nodes []models.HierarchyNode
			switch nodeType {
			case nodeTypeFlag(models.NodeTypeDivision):
				nodes, err = c.GetDivisions(ctx)
			case nodeTypeFlag(models.NodeTypeSite):
				nodes, err = c.GetSites(ctx)
			default:
				nodes, err = c.GetAllNonRootNodes(ctx)
			}
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No nodes found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(nodeHeaders, nodeRows(nodes)))
			return nil
		},
	}

	cmd.Flags().Var(&nodeType, "type", "Node type to list (division|site|all)")

	return cmd
}

func newNodeArchiveCmd(app *App, use string, archived bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: fmt.Sprintf("Set the archived flag of a node to %t", archived),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.client()
			if err != nil {
				return err
			}
			if archived {
				err = c.Archive(ctx, args[0])
			} else {
				err = c.Unarchive(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Node %s archived=%t\n", args[0], archived)
			return nil
		},
	}
}
