package cli

import (
	"github.com/spf13/cobra"

	"kernel-module-detective/internal/detective"
	"kernel-module-detective/internal/logging"
)

// RootCmd is the root Cobra command that gets called from the main func.
// Flags are bound to app.Config, so values set before the call become the flag defaults.
func RootCmd(app *detective.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kdetective",
		Short:         "kdetective generates a synthetic kernel log dataset and hunts the faulty module in it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Config.Validate(); err != nil {
				return err
			}
			return logging.Configure(app.Config.Log)
		},
	}
	app.Config.BindGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		generateCmd(app),
		listCmd(app),
		queryCmd(app),
		solveCmd(app),
		schemaCmd(app),
		sampleCmd(app),
	)
	return cmd
}
