package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/unload/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newNoiseCmd(app *App) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "noise <text...>",
		Short: "Log how you feel; recent tags color tomorrow's clarity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Noise.Record(cmd.Context(), app.UserID, strings.Join(args, " "), tags)
			if err != nil {
				return err
			}
			line := formatter.StyleGreen.Render("Noted.")
			if len(n.EmotionalTags) > 0 {
				line += " " + formatter.Dim(strings.Join(n.EmotionalTags, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Emotional tag (repeatable)")
	return cmd
}
