package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/styles"
)

const defaultWrap = 80

// RenderRecipe renders a recipe as styled terminal Markdown wrapped at width.
func RenderRecipe(r recipe.Recipe, width int) (string, error) {
	md, err := r.Markdown()
	if err != nil {
		return "", err
	}

	if width <= 0 {
		width = defaultWrap
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}

func (m Model) openDetail(r recipe.Recipe) Model {
	content, err := RenderRecipe(r, m.width-2)
	if err != nil {
		log.Error().Err(err).Int64("recipe", r.ID).Msg("failed to render recipe")
		m.err = err
		return m
	}

	m.detail.SetContent(content)
	m.detail.GotoTop()
	m.state = stateDetail
	return m
}
