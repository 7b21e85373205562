package analyser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/generator"
	"kernel-module-detective/internal/record"
)

const faulty = record.DefaultFaultyModule

func withDataset(t *testing.T, tables record.Tables, action func(a *Analyser)) {
	t.Helper()
	db.WithTestDb(t, func(database *db.Database) {
		require.NoError(t, record.NewRepository(database.Goqu()).Save(context.Background(), tables))
		a, err := NewAnalyser(database, DefaultParams())
		require.NoError(t, err)
		action(a)
	})
}

func generated(t *testing.T, seed uint64, scale int) generator.Dataset {
	t.Helper()
	p := generator.DefaultParams()
	p.Seed = seed
	p.Rows = p.Rows.Scale(scale)
	g, err := generator.NewGenerator(p)
	require.NoError(t, err)
	d, err := g.Generate(context.Background())
	require.NoError(t, err)
	return d
}

func column(r Result, i int) []any {
	var out []any
	for _, row := range r.Rows {
		out = append(out, row[i])
	}
	return out
}

func TestLookup(t *testing.T) {
	for _, id := range Catalogue {
		got, ok := Lookup(id.String())
		assert.True(t, ok)
		assert.Equal(t, id, got)
		assert.NotEqual(t, "Unknown query", id.Title())
	}
	_, ok := Lookup("drop_tables")
	assert.False(t, ok)
	assert.Equal(t, "Unknown query", QueryID(0).Title())
	_, ok = Define(QueryID(0), db.DialectSQLite, DefaultParams())
	assert.False(t, ok)
	assert.Len(t, Catalogue, 10)
}

func TestDefine_PlaceholdersMatchArgs(t *testing.T) {
	for _, dialect := range []db.Dialect{db.DialectSQLite, db.DialectPostgres} {
		for _, id := range Catalogue {
			def, ok := Define(id, dialect, DefaultParams())
			require.True(t, ok)
			if dialect == db.DialectSQLite {
				assert.Equal(t, len(def.Args), countRune(def.SQL, '?'), id.String())
			} else {
				assert.Zero(t, countRune(def.SQL, '?'), id.String())
			}
		}
	}
	_, ok := Define(QueryID(42), db.DialectSQLite, DefaultParams())
	assert.False(t, ok)
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestDefine_CompositeArgsFollowText(t *testing.T) {
	p := DefaultParams()
	p.Weights = ScoreWeights{FailedLoads: 7, CriticalErrors: 11, NetworkFailures: 13, SyscallFailures: 17}
	def, ok := Define(CompositeScore, db.DialectPostgres, p)
	require.True(t, ok)

	assert.Equal(t, []any{int64(7), int64(11), int64(13), int64(17), 3, 2, 35.0}, def.Args)
	assert.Contains(t, def.SQL, "fl.failed_load_count * $1")
	assert.Contains(t, def.SQL, "COALESCE(ms.mem_failure_rate, 0) > $7")
}

func TestScenarioA_TableDiscovery(t *testing.T) {
	withDataset(t, generated(t, 1, 1).Tables(), func(a *Analyser) {
		result, err := a.RunNamed(context.Background(), "table_discovery")
		require.NoError(t, err)

		assert.Len(t, result.Rows, 6)
		assert.ElementsMatch(t, []any{
			"boot_logs", "device_drivers", "error_codes", "memory_events", "module_events", "system_calls",
		}, column(result, 0))
	})
}

func TestScenarioB_ForcedFailuresRankInTopThree(t *testing.T) {
	tables := generated(t, 2, 1).Tables()
	start := generator.DefaultParams().SessionStart(2)
	for i := 0; i < 5; i++ {
		tables.ModuleEvents = append(tables.ModuleEvents, record.ModuleEvent{
			Timestamp:   start + 1000 + float64(i),
			ModuleName:  faulty,
			Action:      record.ActionLoad,
			Status:      record.StatusFailed,
			LoadAddress: "0xffffffffc0000000",
			BootSession: 2,
		})
	}

	withDataset(t, tables, func(a *Analyser) {
		result, err := a.Run(context.Background(), FailureRanking)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(result.Rows), 3)

		top := column(result, 0)[:3]
		assert.Contains(t, top, faulty)
		counts := column(result, 1)
		for i := 1; i < len(counts); i++ {
			assert.GreaterOrEqual(t, counts[i-1].(int64), counts[i].(int64))
		}
	})
}

// At twenty times the default volume every threshold is met by the faulty module.
func TestScenarioC_CompositeScoreFindsFaultyModule(t *testing.T) {
	withDataset(t, generated(t, 2024, 20).Tables(), func(a *Analyser) {
		ctx := context.Background()
		result, err := a.Run(ctx, CompositeScore)
		require.NoError(t, err)
		require.NotEmpty(t, result.Rows)

		top := suspectFromRow(result.Rows[0])
		assert.Equal(t, faulty, top.Module)
		for _, row := range result.Rows[1:] {
			other := suspectFromRow(row)
			assert.Less(t, other.Score, top.Score, other.Module)
		}
		for _, row := range result.Rows {
			s := suspectFromRow(row)
			assert.Equal(t, DefaultScoreWeights().Score(s.Signals), s.Score)
		}

		suspect, found, err := a.Culprit(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, top, suspect)
	})
}

// At the default volume the faulty module often misses a threshold: its expected failed loads
// sit below three. When it does qualify it must rank first and no decoy may reach its score.
func TestCompositeScore_DefaultVolume(t *testing.T) {
	const seeds = 40
	db.WithTestDb(t, func(database *db.Database) {
		ctx := context.Background()
		a, err := NewAnalyser(database, DefaultParams())
		require.NoError(t, err)

		found, otherTop := 0, 0
		for seed := uint64(1); seed <= seeds; seed++ {
			require.NoError(t, database.Reset(ctx))
			require.NoError(t, record.NewRepository(database.Goqu()).Save(ctx, generated(t, seed, 1).Tables()))

			result, err := a.Run(ctx, CompositeScore)
			require.NoError(t, err)
			var faultyRow *Suspect
			for i, row := range result.Rows {
				s := suspectFromRow(row)
				if s.Module == faulty {
					assert.Zero(t, i, "seed %d: faulty module ranked %d", seed, i+1)
					faultyRow = &s
				}
			}
			if faultyRow == nil {
				if len(result.Rows) > 0 {
					otherTop++
				}
				continue
			}
			found++
			for _, row := range result.Rows[1:] {
				s := suspectFromRow(row)
				if record.IsDecoy(s.Module) {
					assert.Less(t, s.Score, faultyRow.Score, "seed %d: decoy %s", seed, s.Module)
				}
			}
		}
		t.Logf("culprit found in %d of %d seeds, another module alone qualified in %d", found, seeds, otherTop)
		assert.GreaterOrEqual(t, found, 3)
		assert.LessOrEqual(t, otherTop, 2)
	})
}

func TestScenarioD_UnknownNameDoesNotStopBatch(t *testing.T) {
	withDataset(t, generated(t, 3, 1).Tables(), func(a *Analyser) {
		results, err := a.RunBatch(context.Background(), []string{"failed_modules", "who_did_it", "boot_errors"})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.False(t, results[0].NotFound)
		assert.Equal(t, FailureRanking, results[0].Query)
		assert.True(t, results[1].NotFound)
		assert.Equal(t, "who_did_it", results[1].Name)
		assert.Empty(t, results[1].Rows)
		assert.False(t, results[2].NotFound)
		assert.Equal(t, SessionTriage, results[2].Query)
	})
}

func TestRunAll_EveryQueryExecutes(t *testing.T) {
	withDataset(t, generated(t, 4, 1).Tables(), func(a *Analyser) {
		results, err := a.RunAll(context.Background())
		require.NoError(t, err)
		require.Len(t, results, len(Catalogue))
		for i, r := range results {
			assert.Equal(t, Catalogue[i], r.Query)
			for _, row := range r.Rows {
				assert.Len(t, row, len(r.Columns), r.Name)
			}
		}
	})
}

func TestRunAll_PostgresMatchesSQLite(t *testing.T) {
	tables := generated(t, 2024, 2).Tables()
	var want []Result
	withDataset(t, tables, func(a *Analyser) {
		var err error
		want, err = a.RunAll(context.Background())
		require.NoError(t, err)
	})

	for _, driver := range []string{db.DriverPostgres, db.DriverPgx} {
		t.Run(driver, func(t *testing.T) {
			db.WithTestPostgres(t, driver, func(database *db.Database) {
				ctx := context.Background()
				require.NoError(t, record.NewRepository(database.Goqu()).Save(ctx, tables))
				a, err := NewAnalyser(database, DefaultParams())
				require.NoError(t, err)

				got, err := a.RunAll(ctx)
				require.NoError(t, err)
				require.Len(t, got, len(want))
				for i := range want {
					assert.Equal(t, want[i].Name, got[i].Name)
					assert.Equal(t, want[i].Rows, got[i].Rows, want[i].Name)
				}
			})
		})
	}
}

func TestRun_UnifiedTimeline(t *testing.T) {
	withDataset(t, generated(t, 5, 1).Tables(), func(a *Analyser) {
		result, err := a.Run(context.Background(), UnifiedTimeline)
		require.NoError(t, err)
		require.NotEmpty(t, result.Rows)
		assert.LessOrEqual(t, len(result.Rows), DefaultParams().TimelineLimit)

		kinds := map[any]bool{}
		for i, row := range result.Rows {
			kinds[row[1]] = true
			if i > 0 {
				assert.GreaterOrEqual(t, row[0].(float64), result.Rows[i-1][0].(float64))
			}
			if row[1] == "MODULE_EVENT" {
				assert.IsType(t, int64(0), row[3])
			} else {
				assert.Nil(t, row[3])
			}
		}
	})
}

func TestRun_ErrorCarriesQueryName(t *testing.T) {
	config := db.DefaultConfig()
	config.Path = filepath.Join(t.TempDir(), "empty.db")
	database, err := db.Connect(context.Background(), config)
	require.NoError(t, err)
	defer database.Close()

	a, err := NewAnalyser(database, DefaultParams())
	require.NoError(t, err)

	_, err = a.RunNamed(context.Background(), "failed_modules")
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "failed_modules", queryErr.Query)
	assert.Contains(t, err.Error(), "failed_modules")

	results, err := a.RunBatch(context.Background(), []string{"table_discovery", "smoking_gun", "boot_errors"})
	require.Error(t, err)
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "smoking_gun", queryErr.Query)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Rows)

	_, err = a.Run(context.Background(), QueryID(99))
	assert.Error(t, err)
}

func TestNewAnalyser_RejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.Weights.SyscallFailures = 0
	_, err := NewAnalyser(nil, p)
	assert.Error(t, err)

	p = DefaultParams()
	p.TimelineLimit = 0
	_, err = NewAnalyser(nil, p)
	assert.Error(t, err)
}

func TestScore_StrictlyIncreasingInEachSignal(t *testing.T) {
	w := DefaultScoreWeights()
	base := Signals{FailedLoads: 4, CriticalErrors: 3, NetworkFailures: 1, SyscallFailures: 2}
	assert.Equal(t, int64(33), w.Score(base))

	bumps := []func(s *Signals){
		func(s *Signals) { s.FailedLoads++ },
		func(s *Signals) { s.CriticalErrors++ },
		func(s *Signals) { s.NetworkFailures++ },
		func(s *Signals) { s.SyscallFailures++ },
	}
	for _, bump := range bumps {
		s := base
		for i := 0; i < 10; i++ {
			before := w.Score(s)
			bump(&s)
			assert.Greater(t, w.Score(s), before)
		}
	}
	assert.Error(t, ScoreWeights{FailedLoads: 1, CriticalErrors: 1, NetworkFailures: -1, SyscallFailures: 1}.Validate())
}
