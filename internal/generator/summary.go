package generator

import (
	"github.com/google/uuid"

	"kernel-module-detective/internal/record"
)

// Summary describes one generation run for the report printed after generate.
type Summary struct {
	RunID        uuid.UUID
	Seed         uint64
	FaultyModule string
	Decoys       []string
	// Counts holds per-session row counts keyed by table name.
	Counts []map[string]int64
	Totals map[string]int64
}

func (d Dataset) Summarize() Summary {
	s := Summary{
		RunID:        uuid.New(),
		Seed:         d.Seed,
		FaultyModule: d.FaultyModule,
		Decoys:       append([]string(nil), record.DecoyModules...),
		Totals:       make(map[string]int64, len(record.TableNames)),
	}
	for _, session := range d.Sessions {
		counts := session.Counts()
		s.Counts = append(s.Counts, counts)
		for table, n := range counts {
			s.Totals[table] += n
		}
	}
	return s
}
