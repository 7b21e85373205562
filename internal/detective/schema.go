package detective

import (
	"context"
	"fmt"

	"kernel-module-detective/internal/db"
)

// Schema prints every dataset table with its columns and row count.
func (a *App) Schema(ctx context.Context) error {
	return a.withStore(ctx, true, func(database *db.Database) error {
		tables, err := database.Describe(ctx)
		if err != nil {
			return err
		}
		r := a.renderer()
		for _, table := range tables {
			rows := make([][]any, len(table.Columns))
			for i, c := range table.Columns {
				rows[i] = []any{c.Name, c.Type, c.NotNull}
			}
			title := fmt.Sprintf("%s: %d rows", table.Name, table.Rows)
			if err := r.Table(title, []string{"column", "type", "not_null"}, rows); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sample prints the first limit rows of table.
func (a *App) Sample(ctx context.Context, table string, limit uint) error {
	return a.withStore(ctx, true, func(database *db.Database) error {
		headers, rows, err := database.Sample(ctx, table, limit)
		if err != nil {
			return err
		}
		return a.renderer().Table(fmt.Sprintf("Sample of %s", table), headers, rows)
	})
}
