// Package recipe defines the beer recipe served by the page sources.
package recipe

import (
	"cmp"
	"slices"
	"strings"

	"github.com/colonyops/taproom/internal/core/window"
)

// Amount is a measured quantity such as a volume or a weight.
type Amount struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Malt is one grain in the grain bill.
type Malt struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
}

// Hop addition stages, in brewing order.
const (
	AddStart  = "start"
	AddMiddle = "middle"
	AddEnd    = "end"
)

// Hop is one hop addition.
type Hop struct {
	Name      string `json:"name"`
	Amount    Amount `json:"amount"`
	Add       string `json:"add"`
	Attribute string `json:"attribute"`
}

// Ingredients lists what goes into the brew.
type Ingredients struct {
	Malt  []Malt `json:"malt"`
	Hops  []Hop  `json:"hops"`
	Yeast string `json:"yeast"`
}

// MashStep is one rest of the mash schedule.
type MashStep struct {
	Temp     Amount `json:"temp"`
	Duration *int   `json:"duration"`
}

// Fermentation holds the fermentation temperature.
type Fermentation struct {
	Temp Amount `json:"temp"`
}

// Method describes how the beer is brewed.
type Method struct {
	MashTemp     []MashStep   `json:"mash_temp"`
	Fermentation Fermentation `json:"fermentation"`
	Twist        *string      `json:"twist"`
}

// Recipe is a single beer recipe. Measurements the catalogue does not know
// are nil.
type Recipe struct {
	ID               window.ID   `json:"id"`
	Name             string      `json:"name"`
	Tagline          string      `json:"tagline"`
	FirstBrewed      string      `json:"first_brewed"`
	Description      string      `json:"description"`
	ImageURL         *string     `json:"image_url"`
	ABV              *float64    `json:"abv"`
	IBU              *float64    `json:"ibu"`
	TargetFG         *float64    `json:"target_fg"`
	TargetOG         *float64    `json:"target_og"`
	EBC              *float64    `json:"ebc"`
	SRM              *float64    `json:"srm"`
	PH               *float64    `json:"ph"`
	AttenuationLevel *float64    `json:"attenuation_level"`
	Volume           Amount      `json:"volume"`
	BoilVolume       Amount      `json:"boil_volume"`
	Method           Method      `json:"method"`
	Ingredients      Ingredients `json:"ingredients"`
	FoodPairing      []string    `json:"food_pairing"`
	BrewersTips      string      `json:"brewers_tips"`
	ContributedBy    string      `json:"contributed_by"`
}

// ItemID returns the recipe identifier used by the render window.
func (r Recipe) ItemID() window.ID { return r.ID }

// Title is the name shown in lists.
func (r Recipe) Title() string { return r.Name }

// HopStage is the hops added at one stage of the boil.
type HopStage struct {
	Add  string
	Hops []Hop
}

// HopStages groups the hop additions by stage: start, middle and end first,
// then any other stage in order of first appearance.
func (r Recipe) HopStages() []HopStage {
	order := func(add string) int {
		switch add {
		case AddStart:
			return 0
		case AddMiddle:
			return 1
		case AddEnd:
			return 2
		default:
			return 3
		}
	}

	hops := slices.Clone(r.Ingredients.Hops)
	slices.SortStableFunc(hops, func(a, b Hop) int {
		return cmp.Compare(order(a.Add), order(b.Add))
	})

	var stages []HopStage
	for _, h := range hops {
		if n := len(stages); n > 0 && stages[n-1].Add == h.Add {
			stages[n-1].Hops = append(stages[n-1].Hops, h)
			continue
		}
		stages = append(stages, HopStage{Add: h.Add, Hops: []Hop{h}})
	}
	return stages
}

var shortUnits = map[string]string{
	"litres":    "l",
	"grams":     "g",
	"kilograms": "kg",
	"gallons":   "gal",
	"celsius":   "°C",
}

// ShortUnit abbreviates a unit name. Unknown units are returned unchanged.
func ShortUnit(unit string) string {
	if short, ok := shortUnits[strings.ToLower(unit)]; ok {
		return short
	}
	return unit
}
