package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recipeledger/internal/config"
	"github.com/runnerr0/recipeledger/internal/ledger"
	"github.com/runnerr0/recipeledger/internal/logging"
	"github.com/runnerr0/recipeledger/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestEnv builds an env over a migrated in-memory database with the
// default config.
func newTestEnv(t *testing.T, opts ...ledger.Option) *env {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)

	e := newEnv(context.Background(), config.DefaultConfig(), db, store, logging.Discard(), ":memory:", opts...)
	t.Cleanup(func() { e.Close() })
	return e
}

// reopen builds a fresh ledger over the same database, as a second CLI
// invocation would.
func reopen(t *testing.T, e *env) *env {
	t.Helper()
	return newEnv(context.Background(), e.cfg, e.db, e.store, e.log, e.dbPath)
}

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

// writeTestConfig writes a config whose storage lives in a temp dir and
// returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/config.yaml"
	content := "storage:\n  path: " + dir + "\nledger:\n  top_n: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func ctxBG() context.Context { return context.Background() }
