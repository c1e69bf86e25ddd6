package repository

import (
	"context"
	"errors"

	"cambiacartas-api/internal/model"
)

// ErrNotFound is returned when a lookup misses or a mutation targets a
// record the requesting user does not own. Callers map it to the
// appropriate API error without leaking other users' records.
var ErrNotFound = errors.New("record not found")

// CardMirrorRepository is the local persisted cache of catalog entries.
type CardMirrorRepository interface {
	// GetCard retrieves a catalog entry by id.
	GetCard(ctx context.Context, catalogID string) (*model.CatalogEntry, error)

	// FindCardByName retrieves a catalog entry by exact name and set name.
	// An empty setName matches only entries stored without a set, i.e.
	// placeholders created from a bare name.
	FindCardByName(ctx context.Context, name, setName string) (*model.CatalogEntry, error)

	// UpsertCard inserts or updates an entry. Id and name are immutable
	// once stored; only auxiliary fields are overwritten.
	UpsertCard(ctx context.Context, entry *model.CatalogEntry) error

	// BatchUpsertCards upserts multiple entries in one transaction.
	BatchUpsertCards(ctx context.Context, entries []model.CatalogEntry) error

	// CreatePlaceholder synthesizes a minimal entry with a unique id so
	// bulk operations can proceed when catalog resolution fails.
	CreatePlaceholder(ctx context.Context, name, setName string) (*model.CatalogEntry, error)

	// ResolvePlaceholder replaces a placeholder with a resolved entry and
	// repoints inventory and wishlist references. Explicit operation,
	// never an implicit side effect of UpsertCard.
	ResolvePlaceholder(ctx context.Context, placeholderID string, resolved *model.CatalogEntry) error

	// SearchCards finds mirrored entries whose name contains the query.
	SearchCards(ctx context.Context, query string, limit int) ([]model.CatalogEntry, error)

	// CountCards returns the number of mirrored entries.
	CountCards(ctx context.Context) (int64, error)
}

// InventoryRepository holds per-user card holdings.
type InventoryRepository interface {
	// AddInventory persists a new inventory record.
	AddInventory(ctx context.Context, rec *model.InventoryRecord) error

	// GetInventory retrieves a record by id, regardless of owner.
	GetInventory(ctx context.Context, recordID string) (*model.InventoryRecord, error)

	// ListInventoryByOwner lists all records owned by ownerID.
	ListInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error)

	// ListTradeInventoryByOwner lists ownerID's records marked for trade.
	ListTradeInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error)

	// UpdateInventory updates a record's mutable fields. Ownership is
	// re-asserted in the statement.
	UpdateInventory(ctx context.Context, rec *model.InventoryRecord) error

	// SetForTrade sets the for-trade flag on an owned record.
	SetForTrade(ctx context.Context, recordID, ownerID string, value bool) error

	// RemoveInventory deletes an owned record. ErrNotFound when no record
	// matches both id and owner.
	RemoveInventory(ctx context.Context, recordID, ownerID string) error

	// FindTradeCandidates lists for-trade records referencing any of the
	// given catalog ids, excluding those owned by excludeOwnerID.
	FindTradeCandidates(ctx context.Context, catalogIDs []string, excludeOwnerID string) ([]model.InventoryRecord, error)
}

// WishlistRepository holds per-user wanted cards.
type WishlistRepository interface {
	// AddWishlist persists a new wishlist record.
	AddWishlist(ctx context.Context, rec *model.WishlistRecord) error

	// ListWishlistByOwner lists all wishlist records owned by ownerID.
	ListWishlistByOwner(ctx context.Context, ownerID string) ([]model.WishlistRecord, error)

	// DistinctWishlistCatalogIDs returns the distinct catalog ids on
	// ownerID's wishlist.
	DistinctWishlistCatalogIDs(ctx context.Context, ownerID string) ([]string, error)

	// RemoveWishlist deletes an owned record by record id.
	RemoveWishlist(ctx context.Context, recordID, ownerID string) error

	// RemoveWishlistByCatalogID deletes owned records referencing a
	// catalog id.
	RemoveWishlistByCatalogID(ctx context.Context, ownerID, catalogID string) error
}

// SyncProgressRepository persists catalog sync resumption state.
type SyncProgressRepository interface {
	// GetSyncProgress returns the last persisted state, or ErrNotFound
	// when no sync has run yet.
	GetSyncProgress(ctx context.Context) (*model.SyncProgress, error)

	// SaveSyncProgress upserts the state.
	SaveSyncProgress(ctx context.Context, p *model.SyncProgress) error
}

// ProfileRepository reads community member profiles from the main site
// database.
type ProfileRepository interface {
	// GetProfile retrieves a profile by id.
	GetProfile(ctx context.Context, id string) (*model.Profile, error)

	// GetProfileByUsername retrieves a profile by unique username.
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)

	// GetProfiles retrieves multiple profiles keyed by id. Missing ids
	// are absent from the map, not an error.
	GetProfiles(ctx context.Context, ids []string) (map[string]model.Profile, error)
}
