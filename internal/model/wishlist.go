package model

import "time"

// WishlistRecord is one user's desire for one catalog entry.
type WishlistRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CatalogID string    `json:"catalog_id"`
	Quantity  int       `json:"quantity"`
	Priority  int       `json:"priority,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Card *CatalogEntry `json:"card,omitempty"`
}

// BulkAddFailure reports one catalog id that could not be added during a
// bulk wishlist add.
type BulkAddFailure struct {
	CatalogID string `json:"catalog_id"`
	Reason    string `json:"reason"`
}

// BulkAddResult reports the outcome of a best-effort bulk wishlist add.
// The operation succeeds as a whole even when individual ids failed.
type BulkAddResult struct {
	Added  []WishlistRecord `json:"added"`
	Failed []BulkAddFailure `json:"failed,omitempty"`
}
