package record

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/pkg/errors"
)

const insertBatchSize = 100

// Repository persists dataset tables through goqu so inserts use the store's placeholder syntax.
type Repository struct {
	db *goqu.Database
}

func NewRepository(db *goqu.Database) *Repository {
	return &Repository{db: db}
}

// Save inserts every row of tables in a single transaction.
func (r *Repository) Save(ctx context.Context, tables Tables) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting insert transaction")
	}
	return tx.Wrap(func() error {
		if err := insertAll(ctx, tx, BootLogsTable, tables.BootLogs); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, ModuleEventsTable, tables.ModuleEvents); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, ErrorCodesTable, tables.ErrorRecords); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, SystemCallsTable, tables.Syscalls); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, DeviceDriversTable, tables.DriverInits); err != nil {
			return err
		}
		return insertAll(ctx, tx, MemoryEventsTable, tables.MemoryEvents)
	})
}

func insertAll[T any](ctx context.Context, tx *goqu.TxDatabase, table string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		_, err := tx.Insert(table).
			Prepared(true).
			Rows(rows[start:end]).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return errors.Wrapf(err, "inserting rows %d-%d into %s", start, end-1, table)
		}
	}
	return nil
}

// Load reads every dataset table back in primary key order.
func (r *Repository) Load(ctx context.Context) (Tables, error) {
	var t Tables
	if err := r.scan(ctx, BootLogsTable, &t.BootLogs); err != nil {
		return Tables{}, err
	}
	if err := r.scan(ctx, ModuleEventsTable, &t.ModuleEvents); err != nil {
		return Tables{}, err
	}
	if err := r.scan(ctx, ErrorCodesTable, &t.ErrorRecords); err != nil {
		return Tables{}, err
	}
	if err := r.scan(ctx, SystemCallsTable, &t.Syscalls); err != nil {
		return Tables{}, err
	}
	if err := r.scan(ctx, DeviceDriversTable, &t.DriverInits); err != nil {
		return Tables{}, err
	}
	if err := r.scan(ctx, MemoryEventsTable, &t.MemoryEvents); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func (r *Repository) scan(ctx context.Context, table string, dest any) error {
	err := r.db.From(table).
		Order(goqu.I(IDColumn(table)).Asc()).
		Prepared(true).
		ScanStructsContext(ctx, dest)
	return errors.Wrapf(err, "loading %s", table)
}

func (r *Repository) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(TableNames))
	for _, table := range TableNames {
		n, err := r.db.From(table).CountContext(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}
