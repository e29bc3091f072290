package cli

import (
	"fmt"

	"github.com/alexanderramin/unload/internal/cli/formatter"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/spf13/cobra"
)

func newClarityCmd(app *App) *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "clarity",
		Short: "Show today's clarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.Clarity.Today(cmd.Context(), app.UserID)
			if err != nil {
				return err
			}
			if v.NeedsGeneration && generate {
				return runGenerate(cmd, app)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClarity(v, app.now(), app.loc()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&generate, "generate", "g", false, "Generate when today has no clarity yet")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate",
			Short: "Generate today's clarity, replacing any existing one",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGenerate(cmd, app)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear today's focus without touching any item",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := app.Clarity.ResetToday(cmd.Context(), app.UserID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClarity(&service.ClarityView{Clarity: c}, app.now(), app.loc()))
				return nil
			},
		},
	)
	return cmd
}

func runGenerate(cmd *cobra.Command, app *App) error {
	stop := func() {}
	if app.interactive() {
		stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Looking at your day…")
	}
	v, err := app.Clarity.Generate(cmd.Context(), app.UserID)
	stop()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClarity(v, app.now(), app.loc()))
	return nil
}
