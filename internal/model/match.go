package model

// NameUnavailable substitutes a card name when catalog resolution failed
// during match assembly. The record is kept, never dropped.
const NameUnavailable = "name unavailable"

// MatchCard is one counterparty inventory record that intersects the
// requesting user's wishlist.
type MatchCard struct {
	CatalogID string  `json:"catalog_id"`
	Name      string  `json:"name"`
	Condition string  `json:"condition"`
	Language  string  `json:"language"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// MatchGroup is a derived, non-persisted view: all wishlist hits owned by
// a single counterparty. Never includes the requesting user's own records.
type MatchGroup struct {
	CounterpartyID string     `json:"counterparty_id"`
	Counterparty   *Profile   `json:"counterparty,omitempty"`
	Cards          []MatchCard `json:"cards"`
}
