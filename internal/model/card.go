package model

import (
	"strings"
	"time"
)

// PlaceholderIDPrefix marks catalog entries synthesized locally when a
// card could not be resolved against the external catalog.
const PlaceholderIDPrefix = "placeholder:"

// Sentinel values for placeholder entries.
const (
	PlaceholderRarity  = "common"
	PlaceholderSetCode = "unknown"
)

// CatalogEntry is the canonical representation of one printing of a card.
// ID is stable per printing: the Scryfall id for resolved entries, a
// synthetic placeholder id otherwise.
type CatalogEntry struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SetName         string    `json:"set_name"`
	SetCode         string    `json:"set_code"`
	CollectorNumber string    `json:"collector_number"`
	ImageURI        string    `json:"image_uri,omitempty"`
	Rarity          string    `json:"rarity"`
	Colors          []string  `json:"colors,omitempty"`
	Lang            string    `json:"lang,omitempty"`
	PriceUSD        string    `json:"price_usd,omitempty"`
	ReleasedAt      string    `json:"released_at,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// IsPlaceholder reports whether the entry was synthesized locally.
func (e *CatalogEntry) IsPlaceholder() bool {
	return strings.HasPrefix(e.ID, PlaceholderIDPrefix)
}
