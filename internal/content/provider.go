package content

import (
	"context"
	"errors"
)

// ErrNoContent is returned when a source has nothing for the request.
var ErrNoContent = errors.New("no content")

// Theme is a named word list for the deduction game.
type Theme struct {
	Name  string   `json:"name" yaml:"name"`
	Words []string `json:"words" yaml:"words"`
}

// Provider supplies word cards per scoring round and deduction themes.
// A word card is a comma-separated list of nine words forming one grid row.
type Provider interface {
	WordCards(ctx context.Context, round int) ([]string, error)
	Themes(ctx context.Context) ([]Theme, error)
}

// Fallback tries primary first and falls back to secondary on error or empty
// results.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

func (f Fallback) WordCards(ctx context.Context, round int) ([]string, error) {
	cards, err := f.Primary.WordCards(ctx, round)
	if err == nil && len(cards) > 0 {
		return cards, nil
	}
	return f.Secondary.WordCards(ctx, round)
}

func (f Fallback) Themes(ctx context.Context) ([]Theme, error) {
	themes, err := f.Primary.Themes(ctx)
	if err == nil && len(themes) > 0 {
		return themes, nil
	}
	return f.Secondary.Themes(ctx)
}
