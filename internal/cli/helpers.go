package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/recipeledger/internal/config"
	"github.com/runnerr0/recipeledger/internal/ledger"
	"github.com/runnerr0/recipeledger/internal/logging"
	"github.com/runnerr0/recipeledger/internal/storage"
)

// env bundles everything a command needs. Commands build one with openEnv
// in Execute; tests build one over an in-memory database.
type env struct {
	cfg    *config.Config
	db     *sql.DB
	store  *storage.SQLiteStore
	ledger *ledger.Ledger
	log    logrus.FieldLogger
	dbPath string

	// logFile is the rotating log file; nil when logging goes nowhere.
	logFile io.Closer
}

// loadConfig reads --config when given, otherwise the default config file,
// which is created with defaults on first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		path, err := config.ExpandPath(globals.Config)
		if err != nil {
			return nil, err
		}
		return config.LoadOrCreateAt(path)
	}
	return config.LoadOrCreate()
}

// openEnv loads the config, opens the log file and the database, runs
// migrations and loads the ledger. opts are applied after the ones derived
// from the config.
func openEnv(globals *GlobalFlags, opts ...ledger.Option) (*env, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}
	log, logFile, err := logging.New(cfg.Logging, logPath, globals != nil && globals.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	e, err := openStore(cfg, log, opts...)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	e.logFile = logFile
	return e, nil
}

// openStore opens and migrates the database named by cfg and loads the
// ledger over it.
func openStore(cfg *config.Config, log logrus.FieldLogger, opts ...ledger.Option) (*env, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.RunWithJournalMode(cfg.Storage.SQLiteJournalMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}

	log.WithField("db", dbPath).Debug("database opened")
	return newEnv(context.Background(), cfg, db, store, log, dbPath, opts...), nil
}

// newEnv wires a ledger over an already opened store.
func newEnv(ctx context.Context, cfg *config.Config, db *sql.DB, store *storage.SQLiteStore, log logrus.FieldLogger, dbPath string, opts ...ledger.Option) *env {
	base := []ledger.Option{
		ledger.WithKey(cfg.Storage.NamespaceKey),
		ledger.WithLogger(log),
		ledger.WithTopN(cfg.Ledger.TopN),
		ledger.WithFavoriteCreatesRecord(cfg.Ledger.FavoriteCreatesRecord),
		ledger.WithAuditor(store),
	}
	l := ledger.New(ctx, store, append(base, opts...)...)
	return &env{
		cfg:    cfg,
		db:     db,
		store:  store,
		ledger: l,
		log:    log,
		dbPath: dbPath,
	}
}

// Close releases the store, the database handle and the log file.
func (e *env) Close() error {
	storeErr := e.store.Close()
	dbErr := e.db.Close()
	if e.logFile != nil {
		if err := e.logFile.Close(); err != nil && storeErr == nil && dbErr == nil {
			return fmt.Errorf("close log file: %w", err)
		}
	}
	if storeErr != nil {
		return storeErr
	}
	return dbErr
}

// withEnv opens an env, runs fn and closes the env.
func withEnv(globals *GlobalFlags, fn func(e *env) error, opts ...ledger.Option) error {
	e, err := openEnv(globals, opts...)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}

// recordJSON is the JSON shape of one usage record.
type recordJSON struct {
	RecipeID   string `json:"recipe_id"`
	Title      string `json:"title"`
	LastViewed string `json:"last_viewed"`
	ViewCount  int    `json:"view_count"`
	CookCount  int    `json:"cook_count"`
	Cooked     bool   `json:"cooked"`
	Favorite   bool   `json:"favorite"`
}

func toRecordJSON(r ledger.UsageRecord) recordJSON {
	return recordJSON{
		RecipeID:   r.RecipeID,
		Title:      r.Title,
		LastViewed: r.LastViewed.UTC().Format(time.RFC3339),
		ViewCount:  r.ViewCount,
		CookCount:  r.CookCount,
		Cooked:     r.Cooked,
		Favorite:   r.Favorite,
	}
}

func toRecordsJSON(records []ledger.UsageRecord) []recordJSON {
	return lo.Map(records, func(r ledger.UsageRecord, _ int) recordJSON {
		return toRecordJSON(r)
	})
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// displayTitle falls back to the id for records that never got a title.
func displayTitle(r ledger.UsageRecord) string {
	if r.Title == "" {
		return r.RecipeID
	}
	return r.Title
}

// printRecordList prints records as a numbered list.
func printRecordList(records []ledger.UsageRecord, empty string) {
	if len(records) == 0 {
		fmt.Println(empty)
		return
	}

	for i, r := range records {
		fmt.Printf("%d. %s", i+1, displayTitle(r))
		if r.Favorite {
			fmt.Print(" ★")
		}
		fmt.Println()

		meta := fmt.Sprintf("%s · viewed %d", r.LastViewed.Local().Format("2006-01-02 15:04"), r.ViewCount)
		if r.Cooked {
			meta += fmt.Sprintf(" · cooked %d", r.CookCount)
		}
		fmt.Printf("   %s · %s\n", r.RecipeID, meta)
	}
}

// limitRecords returns at most n records; n <= 0 means all of them.
func limitRecords(records []ledger.UsageRecord, n int) []ledger.UsageRecord {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// requireID trims --id and rejects a missing one before any storage is
// opened.
func requireID(cmd, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s requires --id", cmd)
	}
	return id, nil
}
