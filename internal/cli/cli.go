package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	View      *ViewCommand
	Cook      *CookCommand
	Favorite  *FavoriteCommand
	History   *HistoryCommand
	Favorites *FavoritesCommand
	Cooked    *CookedCommand
	Stats     *StatsCommand
	Show      *ShowCommand
	Forget    *ForgetCommand
	Clear     *ClearCommand
	Status    *StatusCommand
	Audit     *AuditCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "recipeledger"
	parser.LongDescription = "Local ledger of the recipes you view, cook and favorite."

	cmds := &commands{
		View:      &ViewCommand{globals: &globals, version: version},
		Cook:      &CookCommand{globals: &globals, version: version},
		Favorite:  &FavoriteCommand{globals: &globals, version: version},
		History:   &HistoryCommand{globals: &globals, version: version},
		Favorites: &FavoritesCommand{globals: &globals, version: version},
		Cooked:    &CookedCommand{globals: &globals, version: version},
		Stats:     &StatsCommand{globals: &globals, version: version},
		Show:      &ShowCommand{globals: &globals, version: version},
		Forget:    &ForgetCommand{globals: &globals, version: version},
		Clear:     &ClearCommand{globals: &globals, version: version},
		Status:    &StatusCommand{globals: &globals, version: version},
		Audit:     &AuditCommand{globals: &globals, version: version},
	}

	parser.AddCommand("view", "Record a recipe view", "Record that a recipe was viewed.", cmds.View)
	parser.AddCommand("cook", "Record a cooked recipe", "Record that a recipe was cooked. A first cook also counts as a view.", cmds.Cook)
	parser.AddCommand("favorite", "Toggle a favorite", "Toggle the favorite flag of a recipe and print the new state.", cmds.Favorite)
	parser.AddCommand("history", "List recently viewed recipes", "List recipes, most recently viewed first.", cmds.History)
	parser.AddCommand("favorites", "List favorite recipes", "List recipes marked as favorite.", cmds.Favorites)
	parser.AddCommand("cooked", "List cooked recipes", "List cooked recipes, most recent first.", cmds.Cooked)
	parser.AddCommand("stats", "Show usage statistics", "Show view and cook totals and the most viewed recipes.", cmds.Stats)
	parser.AddCommand("show", "Show one recipe", "Print the usage record of a single recipe.", cmds.Show)
	parser.AddCommand("forget", "Remove one recipe", "Remove a single recipe from the ledger.", cmds.Forget)
	parser.AddCommand("clear", "Delete the whole ledger", "Delete ALL ledger data. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("status", "Show storage health", "Show database location, schema version and ledger health.", cmds.Status)
	parser.AddCommand("audit", "List recent changes", "List the most recent ledger changes from the audit log.", cmds.Audit)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("recipeledger %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
