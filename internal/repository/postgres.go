package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/pkg/uid"

	"github.com/lib/pq" // PostgreSQL driver (also used for array binding)
)

// PostgresStore implements the trading data repositories using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := createPostgresTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[PostgresStore] Initialized")
	return &PostgresStore{db: db}, nil
}

func createPostgresTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		set_name TEXT NOT NULL DEFAULT '',
		set_code TEXT NOT NULL DEFAULT '',
		collector_number TEXT NOT NULL DEFAULT '',
		image_uri TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL DEFAULT '',
		released_at TEXT NOT NULL DEFAULT '',
		price_usd TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(lower(name));

	CREATE TABLE IF NOT EXISTS user_inventory (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		condition TEXT NOT NULL,
		language TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		for_trade BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_user ON user_inventory(user_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_card ON user_inventory(card_id);

	CREATE TABLE IF NOT EXISTS wishlists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_wishlists_user ON wishlists(user_id);
	CREATE INDEX IF NOT EXISTS idx_wishlists_card ON wishlists(card_id);

	CREATE TABLE IF NOT EXISTS sync_progress (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current_set TEXT NOT NULL DEFAULT '',
		sets_completed INTEGER NOT NULL DEFAULT 0,
		total_processed INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	_, err := db.Exec(query)
	return err
}

// GetCard retrieves a catalog entry by id.
func (s *PostgresStore) GetCard(ctx context.Context, catalogID string) (*model.CatalogEntry, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	entry, err := scanCard(s.db.QueryRowContext(ctx, query, catalogID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return entry, nil
}

// FindCardByName retrieves a catalog entry by exact name and set name.
func (s *PostgresStore) FindCardByName(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE lower(name) = lower($1) AND lower(set_name) = lower($2) LIMIT 1`
	entry, err := scanCard(s.db.QueryRowContext(ctx, query, name, setName))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card by name: %w", err)
	}
	return entry, nil
}

const pgUpsertCard = `
	INSERT INTO cards (id, name, set_name, set_code, collector_number, image_uri, rarity, released_at, price_usd)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		collector_number = EXCLUDED.collector_number,
		image_uri = EXCLUDED.image_uri,
		rarity = EXCLUDED.rarity,
		released_at = EXCLUDED.released_at,
		price_usd = EXCLUDED.price_usd,
		updated_at = now()`

// UpsertCard inserts or updates an entry, leaving id and name untouched.
func (s *PostgresStore) UpsertCard(ctx context.Context, entry *model.CatalogEntry) error {
	_, err := s.db.ExecContext(ctx, pgUpsertCard, entry.ID, entry.Name, entry.SetName, entry.SetCode,
		entry.CollectorNumber, entry.ImageURI, entry.Rarity, entry.ReleasedAt, entry.PriceUSD)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

// BatchUpsertCards upserts multiple entries in one transaction.
func (s *PostgresStore) BatchUpsertCards(ctx context.Context, entries []model.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pgUpsertCard)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, e.ID, e.Name, e.SetName, e.SetCode,
			e.CollectorNumber, e.ImageURI, e.Rarity, e.ReleasedAt, e.PriceUSD)
		if err != nil {
			return fmt.Errorf("failed to batch upsert card %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreatePlaceholder synthesizes a minimal entry with a unique id.
func (s *PostgresStore) CreatePlaceholder(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	if existing, err := s.FindCardByName(ctx, name, setName); err == nil {
		return existing, nil
	}

	entry := &model.CatalogEntry{
		ID:      uid.NewWithPrefix(model.PlaceholderIDPrefix),
		Name:    name,
		SetName: setName,
		SetCode: model.PlaceholderSetCode,
		Rarity:  model.PlaceholderRarity,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, name, set_name, set_code, rarity) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Name, entry.SetName, entry.SetCode, entry.Rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder: %w", err)
	}

	log.Printf("[PostgresStore] Created placeholder %s for %q", entry.ID, name)
	return entry, nil
}

// ResolvePlaceholder replaces a placeholder with a resolved entry and
// repoints inventory and wishlist references.
func (s *PostgresStore) ResolvePlaceholder(ctx context.Context, placeholderID string, resolved *model.CatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, placeholderID)
	if err != nil {
		return fmt.Errorf("failed to delete placeholder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, pgUpsertCard, resolved.ID, resolved.Name, resolved.SetName,
		resolved.SetCode, resolved.CollectorNumber, resolved.ImageURI, resolved.Rarity,
		resolved.ReleasedAt, resolved.PriceUSD); err != nil {
		return fmt.Errorf("failed to insert resolved card: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE user_inventory SET card_id = $1 WHERE card_id = $2`, resolved.ID, placeholderID); err != nil {
		return fmt.Errorf("failed to repoint inventory: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE wishlists SET card_id = $1 WHERE card_id = $2`, resolved.ID, placeholderID); err != nil {
		return fmt.Errorf("failed to repoint wishlists: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SearchCards finds mirrored entries whose name contains the query.
func (s *PostgresStore) SearchCards(ctx context.Context, query string, limit int) ([]model.CatalogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE name ILIKE $1 ORDER BY name, released_at LIMIT $2`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		entry, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// CountCards returns the number of mirrored entries.
func (s *PostgresStore) CountCards(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	return count, err
}

// AddInventory persists a new inventory record.
func (s *PostgresStore) AddInventory(ctx context.Context, rec *model.InventoryRecord) error {
	if rec.ID == "" {
		rec.ID = uid.New()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
		INSERT INTO user_inventory (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.OwnerID, rec.CatalogID, rec.Quantity,
		rec.Condition, rec.Language, rec.Price, rec.ForTrade, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add inventory record: %w", err)
	}
	return nil
}

// GetInventory retrieves a record by id.
func (s *PostgresStore) GetInventory(ctx context.Context, recordID string) (*model.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM user_inventory WHERE id = $1`
	rec, err := scanInventory(s.db.QueryRowContext(ctx, query, recordID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) listInventory(ctx context.Context, query string, args ...interface{}) ([]model.InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var records []model.InventoryRecord
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// ListInventoryByOwner lists all records owned by ownerID.
func (s *PostgresStore) ListInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	return s.listInventory(ctx,
		`SELECT `+inventoryColumns+` FROM user_inventory WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
}

// ListTradeInventoryByOwner lists ownerID's records marked for trade.
func (s *PostgresStore) ListTradeInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	return s.listInventory(ctx,
		`SELECT `+inventoryColumns+` FROM user_inventory WHERE user_id = $1 AND for_trade ORDER BY created_at DESC`, ownerID)
}

// UpdateInventory updates a record's mutable fields, re-asserting ownership.
func (s *PostgresStore) UpdateInventory(ctx context.Context, rec *model.InventoryRecord) error {
	query := `
		UPDATE user_inventory
		SET quantity = $1, condition = $2, language = $3, price = $4, for_trade = $5, notes = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8`
	res, err := s.db.ExecContext(ctx, query, rec.Quantity, rec.Condition, rec.Language,
		rec.Price, rec.ForTrade, rec.Notes, rec.ID, rec.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetForTrade sets the for-trade flag on an owned record.
func (s *PostgresStore) SetForTrade(ctx context.Context, recordID, ownerID string, value bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_inventory SET for_trade = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		value, recordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to set for-trade flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveInventory deletes an owned record.
func (s *PostgresStore) RemoveInventory(ctx context.Context, recordID, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_inventory WHERE id = $1 AND user_id = $2`, recordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to remove inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindTradeCandidates lists for-trade records referencing any of the
// catalog ids, excluding the requesting user's own records.
func (s *PostgresStore) FindTradeCandidates(ctx context.Context, catalogIDs []string, excludeOwnerID string) ([]model.InventoryRecord, error) {
	if len(catalogIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + inventoryColumns + ` FROM user_inventory
		WHERE card_id = ANY($1) AND user_id != $2 AND for_trade`
	return s.listInventory(ctx, query, pq.Array(catalogIDs), excludeOwnerID)
}

// AddWishlist persists a new wishlist record.
func (s *PostgresStore) AddWishlist(ctx context.Context, rec *model.WishlistRecord) error {
	if rec.ID == "" {
		rec.ID = uid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wishlists (id, user_id, card_id, quantity, priority, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.OwnerID, rec.CatalogID, rec.Quantity, rec.Priority, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist record: %w", err)
	}
	return nil
}

// ListWishlistByOwner lists all wishlist records owned by ownerID.
func (s *PostgresStore) ListWishlistByOwner(ctx context.Context, ownerID string) ([]model.WishlistRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, card_id, quantity, priority, created_at
		 FROM wishlists WHERE user_id = $1 ORDER BY priority DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	var records []model.WishlistRecord
	for rows.Next() {
		var rec model.WishlistRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.CatalogID, &rec.Quantity, &rec.Priority, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DistinctWishlistCatalogIDs returns the distinct catalog ids on the
// owner's wishlist.
func (s *PostgresStore) DistinctWishlistCatalogIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT card_id FROM wishlists WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist catalog ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RemoveWishlist deletes an owned record by record id.
func (s *PostgresStore) RemoveWishlist(ctx context.Context, recordID, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE id = $1 AND user_id = $2`, recordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveWishlistByCatalogID deletes owned records referencing a catalog id.
func (s *PostgresStore) RemoveWishlistByCatalogID(ctx context.Context, ownerID, catalogID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = $1 AND card_id = $2`, ownerID, catalogID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist records: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSyncProgress returns the last persisted sync state.
func (s *PostgresStore) GetSyncProgress(ctx context.Context) (*model.SyncProgress, error) {
	var p model.SyncProgress
	err := s.db.QueryRowContext(ctx,
		`SELECT current_set, sets_completed, total_processed, status, error_message, updated_at
		 FROM sync_progress WHERE id = 1`).
		Scan(&p.CurrentSet, &p.SetsCompleted, &p.TotalProcessed, &p.Status, &p.ErrorMessage, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync progress: %w", err)
	}
	return &p, nil
}

// SaveSyncProgress upserts the sync state.
func (s *PostgresStore) SaveSyncProgress(ctx context.Context, p *model.SyncProgress) error {
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_progress (id, current_set, sets_completed, total_processed, status, error_message, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			current_set = EXCLUDED.current_set,
			sets_completed = EXCLUDED.sets_completed,
			total_processed = EXCLUDED.total_processed,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at`,
		p.CurrentSet, p.SetsCompleted, p.TotalProcessed, p.Status, p.ErrorMessage, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save sync progress: %w", err)
	}
	return nil
}

// Stats returns statistics about the trading database.
func (s *PostgresStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	for name, table := range map[string]string{
		"cards":             "cards",
		"inventory_records": "user_inventory",
		"wishlist_records":  "wishlists",
	} {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, err
		}
		stats[name] = count
	}

	return stats, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ensure PostgresStore implements the repository interfaces
var (
	_ CardMirrorRepository   = (*PostgresStore)(nil)
	_ InventoryRepository    = (*PostgresStore)(nil)
	_ WishlistRepository     = (*PostgresStore)(nil)
	_ SyncProgressRepository = (*PostgresStore)(nil)
)
