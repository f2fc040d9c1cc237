package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/runnerr0/recipeledger/internal/storage"
)

type auditJSON struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	RecipeID  string `json:"recipe_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Execute implements the go-flags Commander interface for AuditCommand.
func (c *AuditCommand) Execute(args []string) error {
	if c.Limit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *AuditCommand) executeWithEnv(e *env) error {
	entries, err := e.store.AuditEntries(context.Background(), c.Limit)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(lo.Map(entries, func(a storage.AuditEntry, _ int) auditJSON {
			return auditJSON{
				ID:        a.ID,
				Action:    a.Action,
				RecipeID:  a.RecipeID,
				Detail:    a.Detail,
				SessionID: a.SessionID,
				Timestamp: a.Timestamp.UTC().Format(time.RFC3339),
			}
		}))
	}

	if len(entries) == 0 {
		fmt.Println("No changes recorded")
		return nil
	}
	for _, a := range entries {
		fmt.Printf("%s  %-10s %s", a.Timestamp.Local().Format("2006-01-02 15:04:05"), a.Action, a.RecipeID)
		if a.Detail != "" {
			fmt.Printf("  (%s)", a.Detail)
		}
		fmt.Println()
	}
	return nil
}
