package cli

import (
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	id, err := requireID("show", c.ID)
	if err != nil {
		return err
	}
	c.ID = id
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *ShowCommand) executeWithEnv(e *env) error {
	id := strings.TrimSpace(c.ID)
	rec, ok := e.ledger.Get(id)
	if !ok {
		return fmt.Errorf("recipe not found: %s", id)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(toRecordJSON(rec))
	}

	fmt.Println(rec.RecipeID)
	fmt.Printf("Title:       %s\n", rec.Title)
	fmt.Printf("Last viewed: %s\n", rec.LastViewed.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Views:       %d\n", rec.ViewCount)
	fmt.Printf("Cooked:      %d\n", rec.CookCount)
	fmt.Printf("Favorite:    %t\n", rec.Favorite)
	return nil
}
