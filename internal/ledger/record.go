package ledger

import "time"

// UsageRecord aggregates every interaction with one recipe.
type UsageRecord struct {
	RecipeID   string    `json:"recipeId"`
	Title      string    `json:"title"`
	LastViewed time.Time `json:"lastViewed"`
	ViewCount  int       `json:"viewCount"`
	Favorite   bool      `json:"favorite"`
	Cooked     bool      `json:"cooked"`
	CookCount  int       `json:"cookCount"`
}

// UsageStats summarizes the ledger.
type UsageStats struct {
	TotalViews      int
	TotalCooks      int
	DistinctRecipes int
	FavoriteCount   int
	// TopRecipes holds the most viewed recipes, highest first. Equal view
	// counts keep the order in which the recipes were first seen.
	TopRecipes []RecipeCount
}

// RecipeCount is one entry of UsageStats.TopRecipes.
type RecipeCount struct {
	RecipeID  string
	Title     string
	ViewCount int
	CookCount int
}

// Audit actions recorded for each mutation.
const (
	ActionView       = "view"
	ActionCook       = "cook"
	ActionFavorite   = "favorite"
	ActionUnfavorite = "unfavorite"
	ActionForget     = "forget"
	ActionClear      = "clear"
)
