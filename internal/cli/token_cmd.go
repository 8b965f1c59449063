package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaintrub/hierarchy-go/client"
)

func newTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Acquire (or reuse) an access token and show its claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			token, err := c.AccessToken(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if token == "" {
				fmt.Fprintln(out, styleWarn.Render("Token service returned an incomplete token."))
				return nil
			}

			info, err := client.InspectToken(token)
			if errors.Is(err, client.ErrOpaqueToken) {
				tokenType, _, _ := strings.Cut(token, " ")
				fmt.Fprintf(out, "%s opaque token\n", tokenType)
				return nil
			}
			if err != nil {
				return err
			}

			rows := [][]string{
				{"TYPE", info.Type},
				{"SUBJECT", info.Subject},
				{"CLIENT", info.ClientID},
				{"AUDIENCE", strings.Join(info.Audience, ", ")},
				{"SCOPES", strings.Join(info.Scopes, " ")},
			}
			if !info.ExpiresAt.IsZero() {
				left := info.ExpiresIn(app.now()).Round(time.Second)
				rows = append(rows, []string{"EXPIRES", fmt.Sprintf("%s (in %s)", info.ExpiresAt.Format(time.RFC3339), left)})
			}
			fmt.Fprint(out, renderTable([]string{"CLAIM", "VALUE"}, rows))
			return nil
		},
	}
}
