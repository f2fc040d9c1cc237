package cli

import (
	"context"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for ForgetCommand.
func (c *ForgetCommand) Execute(args []string) error {
	id, err := requireID("forget", c.ID)
	if err != nil {
		return err
	}
	c.ID = id
	return withEnv(c.globals, c.executeWithEnv)
}

func (c *ForgetCommand) executeWithEnv(e *env) error {
	id := strings.TrimSpace(c.ID)
	removed, err := e.ledger.Forget(context.Background(), id)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"recipe_id": id,
			"removed":   removed,
		})
	}
	if removed {
		fmt.Printf("Forgot %s\n", id)
	} else {
		fmt.Printf("%s was not in the ledger\n", id)
	}
	return nil
}
