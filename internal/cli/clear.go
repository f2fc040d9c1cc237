package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	if err := c.confirm(); err != nil {
		return err
	}
	return withEnv(c.globals, c.executeWithEnv)
}

// confirm enforces --all and, unless --force, a typed confirmation.
func (c *ClearCommand) confirm() error {
	if !c.All {
		return fmt.Errorf("clear requires --all flag for safety")
	}
	if c.Force {
		return nil
	}

	fmt.Println("⚠ WARNING: This will permanently delete ALL recipe history.")
	fmt.Println("  - Viewed and cooked counts")
	fmt.Println("  - Favorites")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "CLEAR" to confirm: `)

	var in io.Reader = os.Stdin
	if c.in != nil {
		in = c.in
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "CLEAR" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

func (c *ClearCommand) executeWithEnv(e *env) error {
	count := e.ledger.Len()
	e.ledger.ClearHistory(context.Background())

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"cleared": true,
			"removed": count,
			"message": "all recipe history deleted",
		})
	}

	fmt.Printf("Cleared %d %s. The ledger is empty.\n", count, pluralize(count, "recipe", "recipes"))
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
