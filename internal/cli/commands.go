package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"kernel-module-detective/internal/detective"
	"kernel-module-detective/internal/record"
)

func generateCmd(app *detective.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh dataset, replacing any existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Generate(cmd.Context())
		},
	}
	app.Config.BindGenerationFlags(cmd.Flags())
	return cmd
}

func listCmd(app *detective.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.List()
		},
	}
}

func queryCmd(app *detective.App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "query <name>...",
		Short: "Run named queries against the dataset",
		Long: `Run one or more queries from the catalogue in the order given.
Unknown names are reported and skipped. Use --all to run the whole catalogue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("query names and --all are mutually exclusive")
			}
			if !all && len(args) == 0 {
				return errors.New("name at least one query or pass --all; see kdetective list")
			}
			return app.Query(cmd.Context(), args, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Run every query of the catalogue")
	app.Config.BindQueryFlags(cmd.Flags())
	return cmd
}

func solveCmd(app *detective.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run the full investigation and print the culprit flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Solve(cmd.Context())
		},
	}
	app.Config.BindQueryFlags(cmd.Flags())
	return cmd
}

func schemaCmd(app *detective.App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Describe the dataset tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Schema(cmd.Context())
		},
	}
}

func sampleCmd(app *detective.App) *cobra.Command {
	var limit uint
	cmd := &cobra.Command{
		Use:       "sample <table>",
		Short:     "Print the first rows of a dataset table",
		Args:      cobra.ExactArgs(1),
		ValidArgs: record.TableNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit == 0 {
				return errors.New("--limit must be at least 1")
			}
			return app.Sample(cmd.Context(), args[0], limit)
		},
	}
	cmd.Flags().UintVar(&limit, "limit", 5, "Number of rows to print")
	return cmd
}
