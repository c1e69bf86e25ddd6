package model

import "time"

// Card conditions, best to worst.
const (
	ConditionMint         = "M"
	ConditionNearMint     = "NM"
	ConditionExcellent    = "EX"
	ConditionGood         = "GD"
	ConditionLightPlayed  = "LP"
	ConditionPlayed       = "PL"
	ConditionPoor         = "PR"
)

// Conditions lists every accepted card condition.
var Conditions = []string{
	ConditionMint, ConditionNearMint, ConditionExcellent,
	ConditionGood, ConditionLightPlayed, ConditionPlayed, ConditionPoor,
}

// Languages lists the supported card languages (Scryfall codes).
var Languages = []string{
	"en", "es", "pt", "fr", "de", "it", "ja", "ko", "ru", "zhs", "zht",
}

// IsValidCondition reports whether c is an accepted condition code.
func IsValidCondition(c string) bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

// IsValidLanguage reports whether l is a supported language code.
func IsValidLanguage(l string) bool {
	for _, v := range Languages {
		if v == l {
			return true
		}
	}
	return false
}

// InventoryRecord is one user's holding of one catalog entry. A user may
// hold the same printing in multiple conditions/languages as distinct
// records.
type InventoryRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CatalogID string    `json:"catalog_id"`
	Quantity  int       `json:"quantity"`
	Condition string    `json:"condition"`
	Language  string    `json:"language"`
	Price     float64   `json:"price"`
	ForTrade  bool      `json:"for_trade"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Card carries resolved catalog details for list responses.
	Card *CatalogEntry `json:"card,omitempty"`
}
