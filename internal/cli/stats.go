package cli

import (
	"fmt"

	"github.com/runnerr0/recipeledger/internal/ledger"
)

type statsJSON struct {
	TotalViews      int               `json:"total_views"`
	TotalCooks      int               `json:"total_cooks"`
	DistinctRecipes int               `json:"distinct_recipes"`
	FavoriteCount   int               `json:"favorite_count"`
	TopRecipes      []recipeCountJSON `json:"top_recipes"`
}

type recipeCountJSON struct {
	RecipeID  string `json:"recipe_id"`
	Title     string `json:"title"`
	ViewCount int    `json:"view_count"`
	CookCount int    `json:"cook_count"`
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	if c.Top < 0 {
		return fmt.Errorf("--top must not be negative")
	}
	var opts []ledger.Option
	if c.Top > 0 {
		opts = append(opts, ledger.WithTopN(c.Top))
	}
	return withEnv(c.globals, c.executeWithEnv, opts...)
}

func (c *StatsCommand) executeWithEnv(e *env) error {
	stats := e.ledger.UsageStats()

	if c.globals != nil && c.globals.JSON {
		out := statsJSON{
			TotalViews:      stats.TotalViews,
			TotalCooks:      stats.TotalCooks,
			DistinctRecipes: stats.DistinctRecipes,
			FavoriteCount:   stats.FavoriteCount,
			TopRecipes:      make([]recipeCountJSON, len(stats.TopRecipes)),
		}
		for i, r := range stats.TopRecipes {
			out.TopRecipes[i] = recipeCountJSON{
				RecipeID:  r.RecipeID,
				Title:     r.Title,
				ViewCount: r.ViewCount,
				CookCount: r.CookCount,
			}
		}
		return printJSON(out)
	}

	fmt.Println("Recipe Usage")
	fmt.Println("============")
	fmt.Printf("Recipes:       %s\n", formatNumber(int64(stats.DistinctRecipes)))
	fmt.Printf("Views:         %s\n", formatNumber(int64(stats.TotalViews)))
	fmt.Printf("Cooks:         %s\n", formatNumber(int64(stats.TotalCooks)))
	fmt.Printf("Favorites:     %s\n", formatNumber(int64(stats.FavoriteCount)))

	if len(stats.TopRecipes) > 0 {
		fmt.Println()
		fmt.Println("Most Viewed:")
		for _, r := range stats.TopRecipes {
			title := r.Title
			if title == "" {
				title = r.RecipeID
			}
			fmt.Printf("  %-30s %s\n", title, formatNumber(int64(r.ViewCount)))
		}
	}
	return nil
}
