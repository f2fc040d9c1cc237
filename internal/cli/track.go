package cli

import (
	"context"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for ViewCommand.
func (c *ViewCommand) Execute(args []string) error {
	id, err := requireID("view", c.ID)
	if err != nil {
		return err
	}
	c.ID = id
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *ViewCommand) executeWithEnv(e *env) error {
	rec, err := e.ledger.TrackView(context.Background(), c.ID, c.Title)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordJSON(rec))
	}
	fmt.Printf("Viewed %s (%d views)\n", displayTitle(rec), rec.ViewCount)
	return nil
}

// Execute implements the go-flags Commander interface for CookCommand.
func (c *CookCommand) Execute(args []string) error {
	id, err := requireID("cook", c.ID)
	if err != nil {
		return err
	}
	c.ID = id
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *CookCommand) executeWithEnv(e *env) error {
	rec, err := e.ledger.TrackCooked(context.Background(), c.ID, c.Title)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordJSON(rec))
	}
	fmt.Printf("Cooked %s (%d %s)\n", displayTitle(rec), rec.CookCount, pluralize(rec.CookCount, "time", "times"))
	return nil
}

// Execute implements the go-flags Commander interface for FavoriteCommand.
func (c *FavoriteCommand) Execute(args []string) error {
	id, err := requireID("favorite", c.ID)
	if err != nil {
		return err
	}
	c.ID = id
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *FavoriteCommand) executeWithEnv(e *env) error {
	id := strings.TrimSpace(c.ID)
	fav, err := e.ledger.ToggleFavorite(context.Background(), id)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"recipe_id": id,
			"favorite":  fav,
		})
	}
	if fav {
		fmt.Printf("Added %s to favorites\n", id)
	} else {
		fmt.Printf("%s is not a favorite\n", id)
	}
	return nil
}
