package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketchparty/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) WordCards(ctx context.Context, round int) ([]string, error) {
	args := m.Called(ctx, round)
	cards, _ := args.Get(0).([]string)
	return cards, args.Error(1)
}

func (m *mockProvider) Themes(ctx context.Context) ([]Theme, error) {
	args := m.Called(ctx)
	themes, _ := args.Get(0).([]Theme)
	return themes, args.Error(1)
}

func TestBuiltinHasPlayableContent(t *testing.T) {
	builtin := Builtin()
	for round := 1; round <= 4; round++ {
		cards, err := builtin.WordCards(context.Background(), round)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(cards), 4, "round %d", round)
		for _, card := range cards {
			assert.Len(t, strings.Split(card, ","), 9, card)
		}
	}
	themes, err := builtin.Themes(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(themes), 12)
	for _, theme := range themes {
		assert.NotEmpty(t, theme.Words, theme.Name)
	}
}

func TestStaticMissingRound(t *testing.T) {
	_, err := Builtin().WordCards(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestStaticReturnsCopies(t *testing.T) {
	static := NewStatic(Dataset{Themes: []Theme{{Name: "A", Words: []string{"x"}}}})
	themes, err := static.Themes(context.Background())
	require.NoError(t, err)
	themes[0].Words[0] = "mutated"

	again, err := static.Themes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", again[0].Words[0])
}

func TestBuiltinDatasetIsACopy(t *testing.T) {
	dataset := BuiltinDataset()
	require.NotEmpty(t, dataset.WordCards[1])
	require.NotEmpty(t, dataset.Themes)
	dataset.WordCards[1][0] = "mutated"
	dataset.Themes[0].Words[0] = "mutated"

	fresh := BuiltinDataset()
	assert.NotEqual(t, "mutated", fresh.WordCards[1][0])
	assert.NotEqual(t, "mutated", fresh.Themes[0].Words[0])
}

func TestStaticSkipsEmptyThemes(t *testing.T) {
	static := NewStatic(Dataset{Themes: []Theme{{Name: "Empty"}, {Name: "", Words: []string{"a"}}}})
	_, err := static.Themes(context.Background())
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFallbackUsesSecondaryOnError(t *testing.T) {
	primary := &mockProvider{}
	primary.On("WordCards", mock.Anything, 2).Return(nil, errors.New("db down"))
	primary.On("Themes", mock.Anything).Return([]Theme{}, nil)

	provider := Fallback{Primary: primary, Secondary: Builtin()}
	cards, err := provider.WordCards(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, cards)

	themes, err := provider.Themes(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, themes)
	primary.AssertExpectations(t)
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := &mockProvider{}
	primary.On("WordCards", mock.Anything, 1).Return([]string{"only"}, nil)

	cards, err := Fallback{Primary: primary, Secondary: Builtin()}.WordCards(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, cards)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	body := `word_cards:
  1:
    - "a, b, c, d, e, f, g, h, i"
themes:
  - name: Animals
    words: [cat, dog]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	dataset, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a, b, c, d, e, f, g, h, i"}, dataset.WordCards[1])
	require.Len(t, dataset.Themes, 1)
	assert.Equal(t, Theme{Name: "Animals", Words: []string{"cat", "dog"}}, dataset.Themes[0])
}

func TestParseRejectsEmptyAndMalformed(t *testing.T) {
	_, err := Parse([]byte("{}"))
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = Parse([]byte("word_cards: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDecodeTheme(t *testing.T) {
	theme, err := decodeTheme(db.Theme{Name: "Space", Words: []byte(`[" comet ", "", "planet"]`)})
	require.NoError(t, err)
	assert.Equal(t, []string{"comet", "planet"}, theme.Words)

	_, err = decodeTheme(db.Theme{Name: "Bad", Words: []byte(`{}`)})
	assert.Error(t, err)

	_, err = decodeTheme(db.Theme{Name: "Blank", Words: []byte(`[" "]`)})
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}
