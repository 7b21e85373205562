package analyser

import (
	"fmt"
)

// Result is the outcome of one named query. NotFound marks a name outside the catalogue;
// such a result has no columns or rows.
type Result struct {
	Query    QueryID
	Name     string
	Title    string
	Columns  []Column
	Rows     [][]any
	NotFound bool
}

func notFound(name string) Result {
	return Result{Name: name, Title: fmt.Sprintf("Query %q not found", name), NotFound: true}
}

// QueryError attributes an execution failure to the query that caused it.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Suspect is a ranked row of the danger score query.
type Suspect struct {
	Module        string
	MemFailurePct float64
	Signals
	Score int64
}

func suspectFromRow(row []any) Suspect {
	s := Suspect{}
	s.Module, _ = row[0].(string)
	s.FailedLoads, _ = row[1].(int64)
	s.CriticalErrors, _ = row[2].(int64)
	s.MemFailurePct, _ = row[3].(float64)
	s.NetworkFailures, _ = row[4].(int64)
	s.SyscallFailures, _ = row[5].(int64)
	s.Score, _ = row[6].(int64)
	return s
}
