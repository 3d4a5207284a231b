// Package fixture serves a generated recipe catalogue without touching the
// network.
package fixture

import (
	"context"
	"fmt"

	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
)

var (
	adjectives = []string{"Hazy", "Dark", "Golden", "Bitter", "Smoked", "Wild", "Imperial", "Session", "Rusty", "Frozen", "Velvet"}
	styles     = []string{"IPA", "Stout", "Lager", "Porter", "Saison", "Pale Ale", "Pilsner", "Sour", "Barley Wine", "Wheat Beer", "Red Ale", "Bock", "Gose"}
	pairings   = []string{"Spicy chicken tikka masala", "Grilled halloumi", "Smoked brisket", "Dark chocolate torte", "Fresh oysters", "Aged cheddar", "Lemon tart"}
	hopNames   = []string{"Cascade", "Simcoe", "Amarillo", "Citra", "Fuggles", "Saaz", "Nelson Sauvin"}
	stages     = []string{recipe.AddStart, recipe.AddMiddle, recipe.AddEnd}
)

// Source serves total recipes with ids 1..total in pages of perPage. Pages
// never change. It is safe for concurrent use.
type Source struct {
	total   int
	perPage int
}

var _ window.PageSource[recipe.Recipe] = (*Source)(nil)

// New creates a fixture source.
func New(total, perPage int) *Source {
	return &Source{total: max(total, 0), perPage: max(perPage, 1)}
}

// Pages returns the number of non-empty pages.
func (s *Source) Pages() int {
	return (s.total + s.perPage - 1) / s.perPage
}

// FetchPage returns the recipes on page. Pages outside 1..Pages report
// window.ErrNoPage.
func (s *Source) FetchPage(ctx context.Context, page int) ([]recipe.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > s.Pages() {
		return nil, fmt.Errorf("page %d: %w", page, window.ErrNoPage)
	}

	first := (page-1)*s.perPage + 1
	last := min(first+s.perPage-1, s.total)

	out := make([]recipe.Recipe, 0, last-first+1)
	for id := first; id <= last; id++ {
		out = append(out, Recipe(id))
	}
	return out, nil
}

// Recipe builds the recipe with the given id. The same id always yields the
// same recipe.
func Recipe(id int) recipe.Recipe {
	n := id - 1
	abv := 3.5 + float64(n%70)/10
	ibu := float64(10 + (n*7)%90)
	ph := 4.4
	duration := 60 + (n%4)*15

	name := fmt.Sprintf("%s %s", adjectives[n%len(adjectives)], styles[(n/len(adjectives))%len(styles)])
	if round := n / (len(adjectives) * len(styles)); round > 0 {
		name = fmt.Sprintf("%s No. %d", name, round+1)
	}

	hops := make([]recipe.Hop, 0, 3)
	for i := range 3 {
		hops = append(hops, recipe.Hop{
			Name:      hopNames[(n+i)%len(hopNames)],
			Amount:    recipe.Amount{Value: float64(10 + 5*i), Unit: "grams"},
			Add:       stages[(n+i)%len(stages)],
			Attribute: []string{"bitter", "flavour", "aroma"}[i],
		})
	}

	return recipe.Recipe{
		ID:          window.ID(id),
		Name:        name,
		Tagline:     fmt.Sprintf("Batch %d of the house range.", id),
		FirstBrewed: fmt.Sprintf("%02d/%d", n%12+1, 2007+n%15),
		Description: fmt.Sprintf("A %s brewed for testing, number %d in the catalogue.", name, id),
		ABV:         &abv,
		IBU:         &ibu,
		PH:          &ph,
		Volume:      recipe.Amount{Value: 20, Unit: "litres"},
		BoilVolume:  recipe.Amount{Value: 25, Unit: "litres"},
		Method: recipe.Method{
			MashTemp:     []recipe.MashStep{{Temp: recipe.Amount{Value: 65, Unit: "celsius"}, Duration: &duration}},
			Fermentation: recipe.Fermentation{Temp: recipe.Amount{Value: 19, Unit: "celsius"}},
		},
		Ingredients: recipe.Ingredients{
			Malt:  []recipe.Malt{{Name: "Maris Otter Extra Pale", Amount: recipe.Amount{Value: 4.5, Unit: "kilograms"}}},
			Hops:  hops,
			Yeast: "Wyeast 1056 - American Ale",
		},
		FoodPairing:   []string{pairings[n%len(pairings)], pairings[(n+3)%len(pairings)]},
		BrewersTips:   "Keep the fermentation temperature steady.",
		ContributedBy: "taproom fixtures",
	}
}
