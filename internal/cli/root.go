package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the top-level "unload" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "unload",
		Short:         "Dump what's on your mind, get a short list back",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addUserFlag(root.PersistentFlags(), app)

	root.AddCommand(
		newServeCmd(app),
		newCaptureCmd(app),
		newItemsCmd(app),
		newItemCmd(app),
		newFocusCmd(app),
		newOrganizeCmd(app),
		newBoardCmd(app),
		newClarityCmd(app),
		newNoiseCmd(app),
		newTokenCmd(app),
	)
	return root
}

func addUserFlag(fs *pflag.FlagSet, app *App) {
	fs.StringVar(&app.UserID, "user", app.UserID, "User id to act as")
}
