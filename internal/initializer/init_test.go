package initializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/generator"
	"kernel-module-detective/internal/record"
)

func TestCreateDataset_StoresEveryRow(t *testing.T) {
	db.WithTestDb(t, func(database *db.Database) {
		params := generator.DefaultParams()
		params.Seed = 42

		summary, err := CreateDataset(context.Background(), database, params)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), summary.Seed)
		assert.Equal(t, record.DefaultFaultyModule, summary.FaultyModule)
		require.Len(t, summary.Counts, params.Sessions)

		counts, err := record.NewRepository(database.Goqu()).Counts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, summary.Totals, counts)
		assert.Equal(t, int64(600), counts[record.BootLogsTable])
		assert.Equal(t, int64(105), counts[record.MemoryEventsTable])
	})
}

func TestCreateDataset_ReplacesPreviousRun(t *testing.T) {
	db.WithTestDb(t, func(database *db.Database) {
		ctx := context.Background()
		first := generator.DefaultParams()
		first.Seed = 1
		first.Sessions = 5
		_, err := CreateDataset(ctx, database, first)
		require.NoError(t, err)

		second := generator.DefaultParams()
		second.Seed = 2
		_, err = CreateDataset(ctx, database, second)
		require.NoError(t, err)

		counts, err := record.NewRepository(database.Goqu()).Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(600), counts[record.BootLogsTable])
	})
}

func TestCreateDataset_InvalidParamsWriteNothing(t *testing.T) {
	db.WithTestDb(t, func(database *db.Database) {
		params := generator.DefaultParams()
		params.Sessions = 0

		_, err := CreateDataset(context.Background(), database, params)
		require.Error(t, err)

		counts, err := record.NewRepository(database.Goqu()).Counts(context.Background())
		require.NoError(t, err)
		for table, n := range counts {
			assert.Zero(t, n, table)
		}
	})
}
