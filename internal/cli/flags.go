package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ViewCommand records that a recipe was viewed.
type ViewCommand struct {
	ID    string `long:"id" description:"Recipe ID (required)"`
	Title string `long:"title" description:"Recipe title"`

	globals *GlobalFlags
	version string
}

// CookCommand records that a recipe was cooked.
type CookCommand struct {
	ID    string `long:"id" description:"Recipe ID (required)"`
	Title string `long:"title" description:"Recipe title"`

	globals *GlobalFlags
	version string
}

// FavoriteCommand toggles a recipe's favorite flag.
type FavoriteCommand struct {
	ID string `long:"id" description:"Recipe ID (required)"`

	globals *GlobalFlags
	version string
}

// HistoryCommand lists recipes, most recently viewed first.
type HistoryCommand struct {
	Limit int `long:"limit" description:"Maximum results (0 = all)" default:"20"`

	globals *GlobalFlags
	version string
}

// FavoritesCommand lists favorite recipes.
type FavoritesCommand struct {
	globals *GlobalFlags
	version string
}

// CookedCommand lists cooked recipes, most recent first.
type CookedCommand struct {
	Limit int `long:"limit" description:"Maximum results (0 = all)" default:"20"`

	globals *GlobalFlags
	version string
}

// StatsCommand shows usage statistics.
type StatsCommand struct {
	Top int `long:"top" description:"Number of most viewed recipes to list (0 = config value)"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one recipe's usage record.
type ShowCommand struct {
	ID string `long:"id" description:"Recipe ID (required)"`

	globals *GlobalFlags
	version string
}

// ForgetCommand removes one recipe from the ledger.
type ForgetCommand struct {
	ID string `long:"id" description:"Recipe ID (required)"`

	globals *GlobalFlags
	version string
}

// ClearCommand deletes the whole ledger after a safety confirmation.
type ClearCommand struct {
	All   bool `long:"all" description:"Required flag to confirm clear intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	in      io.Reader // injectable for testing; nil means os.Stdin
}

// StatusCommand shows storage health and a configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// AuditCommand lists recent ledger changes.
type AuditCommand struct {
	Limit int `long:"limit" description:"Maximum entries" default:"20"`

	globals *GlobalFlags
	version string
}
