package db

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresURLEnv names a PostgreSQL server URL used by tests that need a live server.
const TestPostgresURLEnv = "KDETECTIVE_TEST_POSTGRES_URL"

// WithTestDb opens a fresh sqlite store in a temporary directory, creates the dataset schema and
// hands the connection to action. The store is removed with the test's temporary directory.
func WithTestDb(t *testing.T, action func(db *Database)) {
	t.Helper()
	config := DefaultConfig()
	config.Path = filepath.Join(t.TempDir(), "kernel_logs.db")

	ctx := context.Background()
	database, err := Connect(ctx, config)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, database.Close())
	}()

	require.NoError(t, database.Reset(ctx))
	action(database)
}

// WithTestPostgres creates a dedicated database on the server named by KDETECTIVE_TEST_POSTGRES_URL,
// connects to it through driver, creates the dataset schema and hands the connection to action.
// The database is dropped afterwards. The test is skipped when the variable is unset.
func WithTestPostgres(t *testing.T, driver string, action func(db *Database)) {
	t.Helper()
	serverURL := os.Getenv(TestPostgresURLEnv)
	if serverURL == "" {
		t.Skipf("%s is not set", TestPostgresURLEnv)
	}

	ctx := context.Background()
	admin, err := Connect(ctx, Config{Driver: driver, URL: serverURL})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, admin.Close())
	}()

	name := "kdetective_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.ExecContext(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)
	defer func() {
		// Disconnect leftover sessions before dropping.
		_, err := admin.ExecContext(ctx,
			"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()", name)
		assert.NoError(t, err)
		_, err = admin.ExecContext(ctx, "DROP DATABASE "+name)
		assert.NoError(t, err)
	}()

	testURL, err := url.Parse(serverURL)
	require.NoError(t, err)
	testURL.Path = "/" + name

	database, err := Connect(ctx, Config{Driver: driver, URL: testURL.String()})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, database.Close())
	}()

	require.NoError(t, database.Reset(ctx))
	action(database)
}
