package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
)

// windowState is the JSON form of a window snapshot.
type windowState struct {
	Op       string        `json:"op,omitempty"`
	Range    *window.Range `json:"range,omitempty"`
	IDs      []window.ID   `json:"ids"`
	AtStart  bool          `json:"at_start"`
	AtEnd    bool          `json:"at_end"`
	Overflow bool          `json:"overflow,omitempty"`
	Size     int           `json:"size"`
	Step     int           `json:"step"`
	Removed  int           `json:"removed"`
}

func newWindowState(op string, snap browse.Snapshot) windowState {
	ids := make([]window.ID, 0, len(snap.Items))
	for _, r := range snap.Items {
		ids = append(ids, r.ID)
	}

	st := windowState{
		Op:      op,
		IDs:     ids,
		AtStart: snap.AtStart,
		AtEnd:   snap.AtEnd,
		Size:    snap.Size,
		Step:    snap.Step,
		Removed: snap.Removed,
	}
	if snap.Established {
		rng := snap.Range
		st.Range = &rng
	}
	return st
}

// recipeRow is the JSON form of a recipe in listings.
type recipeRow struct {
	ID          window.ID `json:"id"`
	Name        string    `json:"name"`
	Tagline     string    `json:"tagline,omitempty"`
	ABV         *float64  `json:"abv,omitempty"`
	FirstBrewed string    `json:"first_brewed,omitempty"`
}

func newRecipeRow(r recipe.Recipe) recipeRow {
	return recipeRow{
		ID:          r.ID,
		Name:        r.Name,
		Tagline:     r.Tagline,
		ABV:         r.ABV,
		FirstBrewed: r.FirstBrewed,
	}
}

// writeRecipeTable prints recipes as an aligned table. Names are truncated
// so rows fit in width columns; a width of zero disables truncation.
func writeRecipeTable(out io.Writer, items []recipe.Recipe, width int) error {
	nameWidth := 0
	if width > 0 {
		// id, abv and first brewed columns plus padding
		nameWidth = max(width-30, 12)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tABV\tFIRST BREWED")
	for _, r := range items {
		name := r.Name
		if nameWidth > 0 {
			name = ansi.Truncate(name, nameWidth, "…")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, name, formatABV(r.ABV), r.FirstBrewed)
	}
	return w.Flush()
}

func formatABV(abv *float64) string {
	if abv == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*abv, 'f', -1, 64) + "%"
}

// parseIDs parses recipe identifiers given as arguments.
func parseIDs(args []string) ([]window.ID, error) {
	ids := make([]window.ID, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid recipe id %q", arg)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
