package recipe

import (
	"fmt"
	"strconv"
	"text/template"

	"github.com/colonyops/taproom/pkg/tmpl"
)

const markdownTemplate = `# {{ .Name | md }}

_{{ .Tagline | md }}_

{{ .Description }}

## Beer Stats

| | |
|---|---|
| Alcohol (abv) | {{ num .ABV }} |
| Bitterness (ibu) | {{ num .IBU }} |
| Acidity (pH) | {{ num .PH }} |
| Attenuation | {{ num .AttenuationLevel }} |
| Volume | {{ amount .Volume }} |
| Pre boil volume | {{ amount .BoilVolume }} |
| Original gravity | {{ num .TargetOG }} |
| Final gravity | {{ num .TargetFG }} |
| Color (srm) | {{ num .SRM }} |
| Color (ebc) | {{ num .EBC }} |
| First brewed | {{ .FirstBrewed }} |

## Ingredients
{{ with .Ingredients.Malt }}
### Malt
{{ range . }}
- {{ .Name | md }}: {{ amount .Amount }}{{ end }}
{{ end }}{{ with .HopStages }}
### Hops
{{ range $i, $stage := . }}
**Step {{ inc $i }}** ({{ $stage.Add }})
{{ range $stage.Hops }}
- {{ .Name | md }}: {{ amount .Amount }}, {{ .Attribute }}{{ end }}
{{ end }}{{ end }}{{ with .Ingredients.Yeast }}
### Yeast

{{ . | md }}
{{ end }}
## Method
{{ with .Method.MashTemp }}
### Step: Mash
{{ range . }}
- Temperature: {{ amount .Temp }}{{ with .Duration }}; duration: {{ . }}{{ end }}{{ end }}
{{ end }}{{ if .Method.Fermentation.Temp.Unit }}
### Step: Fermentation

Temperature: {{ amount .Method.Fermentation.Temp }}
{{ end }}{{ with .Method.Twist }}
### Step: Twist

{{ . }}
{{ end }}{{ with .FoodPairing }}
## Food Pairing
{{ range . }}
- {{ . }}{{ end }}
{{ end }}{{ with .BrewersTips }}
## Brewer's Tips

{{ . }}
{{ end }}{{ with .ContributedBy }}
---

Contributed by {{ . | md }}
{{ end }}`

var markdownFuncs = template.FuncMap{
	"amount": formatAmount,
}

func formatAmount(a Amount) string {
	v := strconv.FormatFloat(a.Value, 'f', -1, 64)
	if a.Unit == "" {
		return v
	}
	return v + " " + ShortUnit(a.Unit)
}

// Markdown renders the full recipe as a Markdown document.
func (r Recipe) Markdown() (string, error) {
	out, err := tmpl.RenderWith(markdownTemplate, r, markdownFuncs)
	if err != nil {
		return "", fmt.Errorf("render recipe %d: %w", r.ID, err)
	}
	return out, nil
}
