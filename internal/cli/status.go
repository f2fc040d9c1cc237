package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/recipeledger/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string            `json:"version"`
	DatabasePath      string            `json:"database_path"`
	DatabaseSizeBytes int64             `json:"database_size_bytes"`
	SchemaVersion     int               `json:"schema_version"`
	NamespaceKey      string            `json:"namespace_key"`
	Recipes           int               `json:"recipes"`
	TotalKeys         int64             `json:"total_keys"`
	AuditEntries      int64             `json:"audit_entries"`
	LastWrite         string            `json:"last_write,omitempty"`
	TopActions        []actionCountJSON `json:"top_actions"`
	Degraded          bool              `json:"degraded"`
	SessionID         string            `json:"session_id"`
}

type actionCountJSON struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withEnv(c.globals, c.executeWithEnv)
}

// executeWithEnv runs status against a provided env (for testing).
func (c *StatusCommand) executeWithEnv(e *env) error {
	ctx := context.Background()

	stats, err := e.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	schema, err := storage.NewMigrationRunner(e.db).Version()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	dbSize := stats.DatabaseSizeBytes
	if info, err := os.Stat(e.dbPath); err == nil {
		dbSize = info.Size()
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(e, stats, schema, dbSize)
	}
	return c.printStatusHuman(e, stats, schema, dbSize)
}

func (c *StatusCommand) printStatusHuman(e *env, stats *storage.Stats, schema int, dbSize int64) error {
	fmt.Println("Recipe Ledger Status")
	fmt.Println("====================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", e.dbPath, formatBytes(dbSize))
	fmt.Printf("Schema:        v%d\n", schema)
	fmt.Printf("Key:           %s\n", e.cfg.Storage.NamespaceKey)
	fmt.Printf("Recipes:       %s\n", formatNumber(int64(e.ledger.Len())))
	fmt.Printf("Audit log:     %s entries\n", formatNumber(stats.TotalAuditEntries))
	if !stats.LastWrite.IsZero() {
		fmt.Printf("Last write:    %s\n", stats.LastWrite.Local().Format("2006-01-02 15:04"))
	}

	if len(stats.TopActions) > 0 {
		fmt.Println()
		fmt.Println("Actions:")
		for _, a := range stats.TopActions {
			fmt.Printf("  %-20s %s\n", a.Action, formatNumber(a.Count))
		}
	}

	fmt.Println()
	if e.ledger.Degraded() {
		fmt.Println("Storage:       degraded (memory only)")
	} else {
		fmt.Println("Storage:       ok")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(e *env, stats *storage.Stats, schema int, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      e.dbPath,
		DatabaseSizeBytes: dbSize,
		SchemaVersion:     schema,
		NamespaceKey:      e.cfg.Storage.NamespaceKey,
		Recipes:           e.ledger.Len(),
		TotalKeys:         stats.TotalKeys,
		AuditEntries:      stats.TotalAuditEntries,
		TopActions:        make([]actionCountJSON, len(stats.TopActions)),
		Degraded:          e.ledger.Degraded(),
		SessionID:         e.ledger.SessionID(),
	}

	if !stats.LastWrite.IsZero() {
		out.LastWrite = stats.LastWrite.UTC().Format(time.RFC3339)
	}

	for i, a := range stats.TopActions {
		out.TopActions[i] = actionCountJSON{Action: a.Action, Count: a.Count}
	}

	return printJSON(out)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
