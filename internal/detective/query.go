package detective

import (
	"context"

	"kernel-module-detective/internal/analyser"
	"kernel-module-detective/internal/db"
)

// List prints the query catalogue.
func (a *App) List() error {
	rows := make([][]any, len(analyser.Catalogue))
	for i, id := range analyser.Catalogue {
		rows[i] = []any{int64(id), id.String(), id.Title()}
	}
	return a.renderer().Table("Available queries", []string{"#", "name", "title"}, rows)
}

// Query runs the named queries in order, or the whole catalogue when all is set. Unknown names
// are reported and skipped.
func (a *App) Query(ctx context.Context, names []string, all bool) error {
	return a.withAnalyser(ctx, func(an *analyser.Analyser) error {
		var results []analyser.Result
		var err error
		if all {
			results, err = an.RunAll(ctx)
		} else {
			results, err = an.RunBatch(ctx, names)
		}
		// Results gathered before a failure are still printed.
		if printErr := a.printResults(results); printErr != nil && err == nil {
			err = printErr
		}
		return err
	})
}

// Solve runs the full investigation and names the culprit.
func (a *App) Solve(ctx context.Context) error {
	return a.withAnalyser(ctx, func(an *analyser.Analyser) error {
		results, err := an.RunAll(ctx)
		if printErr := a.printResults(results); printErr != nil && err == nil {
			err = printErr
		}
		if err != nil {
			return err
		}

		suspect, found, err := analyser.CulpritFrom(results[len(results)-1])
		if err != nil {
			return err
		}
		r := a.renderer()
		if !found {
			return r.Line("No module meets all criteria. Adjust the thresholds and investigate further.")
		}
		if err := r.Highlight("CULPRIT IDENTIFIED: %s", suspect.Module); err != nil {
			return err
		}
		if err := r.Line("Danger score: %d", suspect.Score); err != nil {
			return err
		}
		return r.Highlight("FLAG: CTF{%s}", suspect.Module)
	})
}

func (a *App) withAnalyser(ctx context.Context, action func(an *analyser.Analyser) error) error {
	return a.withStore(ctx, true, func(database *db.Database) error {
		an, err := analyser.NewAnalyser(database, a.Config.Query)
		if err != nil {
			return err
		}
		return action(an)
	})
}

func (a *App) printResults(results []analyser.Result) error {
	r := a.renderer()
	for _, result := range results {
		if err := r.Result(result); err != nil {
			return err
		}
	}
	return nil
}
