package detective

import (
	"context"
	"fmt"
	"strings"

	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/generator"
	"kernel-module-detective/internal/initializer"
	"kernel-module-detective/internal/record"
)

// Generate rebuilds the dataset in the configured store and prints the run report.
func (a *App) Generate(ctx context.Context) error {
	var summary generator.Summary
	err := a.withStore(ctx, false, func(database *db.Database) error {
		var err error
		summary, err = initializer.CreateDataset(ctx, database, a.Config.Generation)
		return err
	})
	if err != nil {
		return err
	}
	return a.report(summary)
}

func (a *App) report(summary generator.Summary) error {
	r := a.renderer()
	if err := r.Highlight("Dataset generated"); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Run ID:        %s", summary.RunID),
		fmt.Sprintf("Seed:          %d", summary.Seed),
		fmt.Sprintf("Faulty module: %s", summary.FaultyModule),
		fmt.Sprintf("Decoys:        %s", strings.Join(summary.Decoys, ", ")),
		"",
	}
	for _, line := range lines {
		if err := r.Line("%s", line); err != nil {
			return err
		}
	}

	headers := []string{"table"}
	for i := range summary.Counts {
		headers = append(headers, fmt.Sprintf("session %d", i+1))
	}
	headers = append(headers, "total")

	rows := make([][]any, 0, len(record.TableNames))
	for _, table := range record.TableNames {
		row := []any{table}
		for _, counts := range summary.Counts {
			row = append(row, counts[table])
		}
		rows = append(rows, append(row, summary.Totals[table]))
	}
	return r.Table("Rows per boot session", headers, rows)
}
