package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/pkg/errors"

	"kernel-module-detective/internal/record"
)

const (
	sqliteTablesQuery = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations'
ORDER BY name`

	postgresTablesQuery = `SELECT CAST(table_name AS TEXT) FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' AND table_name <> 'schema_migrations'
ORDER BY table_name`

	sqliteColumnsQuery = `SELECT name, type, "notnull" FROM pragma_table_info(?) ORDER BY cid`

	postgresColumnsQuery = `SELECT CAST(column_name AS TEXT), CAST(data_type AS TEXT), CASE WHEN is_nullable = 'NO' THEN 1 ELSE 0 END
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = CAST($1 AS TEXT)
ORDER BY ordinal_position`
)

// TablesQuery lists user tables, leaving out engine internals and the migration bookkeeping table.
func TablesQuery(dialect Dialect) string {
	if dialect == DialectPostgres {
		return postgresTablesQuery
	}
	return sqliteTablesQuery
}

type ColumnInfo struct {
	Name    string
	Type    string
	NotNull bool
}

type TableInfo struct {
	Name    string
	Columns []ColumnInfo
	Rows    int64
}

func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.QueryContext(ctx, TablesQuery(d.Dialect()))
	if err != nil {
		return nil, errors.Wrap(err, "listing tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning table name")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing tables")
	}
	return tables, nil
}

// CheckSchema fails with ErrSchemaMissing unless every dataset table exists.
func (d *Database) CheckSchema(ctx context.Context) error {
	tables, err := d.ListTables(ctx)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}
	var missing []string
	for _, t := range record.TableNames {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return errors.WithMessagef(ErrSchemaMissing, "missing tables %s; run generate first", strings.Join(missing, ", "))
	}
	return nil
}

// Describe reports columns and row counts of every dataset table.
func (d *Database) Describe(ctx context.Context) ([]TableInfo, error) {
	if err := d.CheckSchema(ctx); err != nil {
		return nil, err
	}
	columnsQuery := sqliteColumnsQuery
	if d.Dialect() == DialectPostgres {
		columnsQuery = postgresColumnsQuery
	}

	infos := make([]TableInfo, 0, len(record.TableNames))
	for _, table := range record.TableNames {
		columns, err := d.columns(ctx, columnsQuery, table)
		if err != nil {
			return nil, err
		}
		count, err := d.Goqu().From(table).CountContext(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "counting rows of %s", table)
		}
		infos = append(infos, TableInfo{Name: table, Columns: columns, Rows: count})
	}
	return infos, nil
}

func (d *Database) columns(ctx context.Context, query, table string) ([]ColumnInfo, error) {
	rows, err := d.QueryContext(ctx, query, table)
	if err != nil {
		return nil, errors.Wrapf(err, "describing %s", table)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var notNull int64
		if err := rows.Scan(&c.Name, &c.Type, &notNull); err != nil {
			return nil, errors.Wrapf(err, "scanning column of %s", table)
		}
		c.NotNull = notNull != 0
		columns = append(columns, c)
	}
	return columns, errors.Wrapf(rows.Err(), "describing %s", table)
}

// Sample returns up to limit rows of a dataset table in primary key order.
// Values are string, int64, float64, bool or nil.
func (d *Database) Sample(ctx context.Context, table string, limit uint) ([]string, [][]any, error) {
	if !record.IsTable(table) {
		return nil, nil, errors.Errorf("unknown table %q; expected one of %s", table, strings.Join(record.TableNames, ", "))
	}
	query, args, err := d.Goqu().From(table).
		Order(goqu.I(record.IDColumn(table)).Asc()).
		Limit(limit).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "building sample query for %s", table)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "sampling %s", table)
	}
	defer rows.Close()
	return scanAny(rows)
}

func scanAny(rows *sql.Rows) ([]string, [][]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	var values [][]any
	for rows.Next() {
		row := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, errors.WithStack(err)
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		values = append(values, row)
	}
	return columns, values, errors.WithStack(rows.Err())
}
