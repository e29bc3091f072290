package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Verifier == nil {
				return errors.New("no JWT secret configured (set auth.jwt_secret)")
			}
			token, err := app.Verifier.Issue(app.UserID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
