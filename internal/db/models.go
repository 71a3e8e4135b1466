package db

import (
	"time"

	"gorm.io/datatypes"
)

// WordCard is one comma-separated row of nine words for a scoring round.
type WordCard struct {
	ID        uint      `gorm:"primaryKey"`
	Round     int       `gorm:"not null;index;uniqueIndex:idx_word_cards_round_text"`
	Text      string    `gorm:"size:512;not null;uniqueIndex:idx_word_cards_round_text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Theme struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:64;not null;uniqueIndex"`
	Words     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}
