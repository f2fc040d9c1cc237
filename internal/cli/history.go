package cli

import (
	"fmt"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *HistoryCommand) executeWithEnv(e *env) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	records := limitRecords(e.ledger.History(), c.Limit)

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordsJSON(records))
	}
	printRecordList(records, "No recipes viewed yet")
	return nil
}

// Execute implements the go-flags Commander interface for FavoritesCommand.
func (c *FavoritesCommand) Execute(args []string) error {
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *FavoritesCommand) executeWithEnv(e *env) error {
	records := e.ledger.Favorites()

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordsJSON(records))
	}
	printRecordList(records, "No favorites yet")
	return nil
}

// Execute implements the go-flags Commander interface for CookedCommand.
func (c *CookedCommand) Execute(args []string) error {
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *CookedCommand) executeWithEnv(e *env) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	records := limitRecords(e.ledger.RecentlyCooked(), c.Limit)

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordsJSON(records))
	}
	printRecordList(records, "Nothing cooked yet")
	return nil
}
