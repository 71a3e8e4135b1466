package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sketchparty/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Database reads content from the word_cards and themes tables.
type Database struct {
	conn *gorm.DB
}

func NewDatabase(conn *gorm.DB) *Database {
	return &Database{conn: conn}
}

func (d *Database) WordCards(ctx context.Context, round int) ([]string, error) {
	var rows []db.WordCard
	if err := d.conn.WithContext(ctx).Where("round = ?", round).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load word cards: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoContent
	}
	cards := make([]string, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.Text)
	}
	return cards, nil
}

func (d *Database) Themes(ctx context.Context) ([]Theme, error) {
	var rows []db.Theme
	if err := d.conn.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	themes := make([]Theme, 0, len(rows))
	for _, row := range rows {
		theme, err := decodeTheme(row)
		if err != nil {
			log.Warn().Err(err).Str("theme", row.Name).Msg("skipping malformed theme")
			continue
		}
		themes = append(themes, theme)
	}
	if len(themes) == 0 {
		return nil, ErrNoContent
	}
	return themes, nil
}

func decodeTheme(row db.Theme) (Theme, error) {
	var words []string
	if err := json.Unmarshal(row.Words, &words); err != nil {
		return Theme{}, err
	}
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		if word = strings.TrimSpace(word); word != "" {
			cleaned = append(cleaned, word)
		}
	}
	if len(cleaned) == 0 {
		return Theme{}, errors.New("theme has no words")
	}
	return Theme{Name: row.Name, Words: cleaned}, nil
}

type ImportStats struct {
	Cards   int
	Themes  int
	Skipped int
}

// Import upserts a dataset. Rows that collide with a concurrent writer are
// counted as skipped.
func Import(ctx context.Context, conn *gorm.DB, dataset Dataset) (ImportStats, error) {
	var stats ImportStats
	tx := conn.WithContext(ctx)
	for round, cards := range dataset.WordCards {
		for _, text := range cards {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			entry := db.WordCard{Round: round, Text: text}
			err := tx.FirstOrCreate(&entry, db.WordCard{Round: round, Text: text}).Error
			if isUniqueViolation(err) {
				stats.Skipped++
				continue
			}
			if err != nil {
				return stats, fmt.Errorf("upsert word card: %w", err)
			}
			stats.Cards++
		}
	}
	for _, theme := range dataset.Themes {
		name := strings.TrimSpace(theme.Name)
		if name == "" || len(theme.Words) == 0 {
			continue
		}
		words, err := json.Marshal(theme.Words)
		if err != nil {
			return stats, err
		}
		var entry db.Theme
		err = tx.Where(db.Theme{Name: name}).
			Assign(db.Theme{Words: datatypes.JSON(words)}).
			FirstOrCreate(&entry).Error
		if isUniqueViolation(err) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("upsert theme: %w", err)
		}
		stats.Themes++
	}
	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
