package analyser

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"kernel-module-detective/internal/db"
)

// Querier is the read side of a store.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Dialect() db.Dialect
}

type Analyser struct {
	store  Querier
	params Params
}

func NewAnalyser(store Querier, params Params) (*Analyser, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Analyser{store: store, params: params}, nil
}

// Run executes one catalogue query. Failures come back as *QueryError.
func (a *Analyser) Run(ctx context.Context, id QueryID) (Result, error) {
	def, ok := Define(id, a.store.Dialect(), a.params)
	if !ok {
		return Result{}, &QueryError{Query: id.String(), Err: errors.Errorf("query id %d is not in the catalogue", int(id))}
	}
	logger := log.WithField("query", id.String())
	logger.Debug("running query")

	rows, err := a.query(ctx, def)
	if err != nil {
		return Result{}, &QueryError{Query: id.String(), Err: err}
	}
	logger.WithField("rows", len(rows)).Debug("query finished")

	return Result{
		Query:   id,
		Name:    id.String(),
		Title:   id.Title(),
		Columns: def.Columns,
		Rows:    rows,
	}, nil
}

// RunNamed executes the query called name, or returns a NotFound result for unknown names.
func (a *Analyser) RunNamed(ctx context.Context, name string) (Result, error) {
	id, ok := Lookup(name)
	if !ok {
		log.WithField("query", name).Warn("query not found")
		return notFound(name), nil
	}
	return a.Run(ctx, id)
}

// RunBatch runs names in order. Unknown names yield NotFound results and the batch carries on;
// the first execution failure stops the batch and is returned with the results gathered so far.
func (a *Analyser) RunBatch(ctx context.Context, names []string) ([]Result, error) {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		result, err := a.RunNamed(ctx, name)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (a *Analyser) RunAll(ctx context.Context) ([]Result, error) {
	names := make([]string, len(Catalogue))
	for i, id := range Catalogue {
		names[i] = id.String()
	}
	return a.RunBatch(ctx, names)
}

// Culprit returns the top ranked module of the danger score, if any module meets every threshold.
func (a *Analyser) Culprit(ctx context.Context) (Suspect, bool, error) {
	result, err := a.Run(ctx, CompositeScore)
	if err != nil {
		return Suspect{}, false, err
	}
	return CulpritFrom(result)
}

// CulpritFrom reads the culprit off an already executed danger score result.
func CulpritFrom(result Result) (Suspect, bool, error) {
	if result.Query != CompositeScore {
		return Suspect{}, false, errors.Errorf("culprit needs %s results, got %q", CompositeScore, result.Name)
	}
	if len(result.Rows) == 0 {
		return Suspect{}, false, nil
	}
	return suspectFromRow(result.Rows[0]), true, nil
}

func (a *Analyser) query(ctx context.Context, def Definition) ([][]any, error) {
	rows, err := a.store.QueryContext(ctx, def.SQL, def.Args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(columns) != len(def.Columns) {
		return nil, errors.Errorf("expected %d columns, store returned %d", len(def.Columns), len(columns))
	}

	var out [][]any
	for rows.Next() {
		dest := make([]any, len(def.Columns))
		for i, c := range def.Columns {
			switch c.Kind {
			case KindInt:
				dest[i] = &sql.NullInt64{}
			case KindFloat:
				dest[i] = &sql.NullFloat64{}
			default:
				dest[i] = &sql.NullString{}
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		out = append(out, values(dest))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func values(dest []any) []any {
	row := make([]any, len(dest))
	for i, d := range dest {
		switch v := d.(type) {
		case *sql.NullInt64:
			if v.Valid {
				row[i] = v.Int64
			}
		case *sql.NullFloat64:
			if v.Valid {
				row[i] = v.Float64
			}
		case *sql.NullString:
			if v.Valid {
				row[i] = v.String
			}
		}
	}
	return row
}
