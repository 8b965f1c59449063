package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaintrub/hierarchy-go/internal/seed"
)

func newSeedCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a hierarchy described in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(app.Fs, file)
			if err != nil {
				return err
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			res, err := seed.Apply(cmd.Context(), c, f, app.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded root %s with %d divisions and %d sites\n",
				res.RootID, res.Divisions, res.Sites)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed YAML file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
