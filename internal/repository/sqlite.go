package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/pkg/uid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements the trading data repositories using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed store.
// dbPath is the path to the database file (e.g., "./data/cambiacartas.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Open with WAL mode and other optimizations
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
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
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);

	CREATE TABLE IF NOT EXISTS user_inventory (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		condition TEXT NOT NULL,
		language TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		for_trade INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_user ON user_inventory(user_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_card ON user_inventory(card_id);

	CREATE TABLE IF NOT EXISTS wishlists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
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
		updated_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(query)
	return err
}

const cardColumns = `id, name, set_name, set_code, collector_number, image_uri, rarity, released_at, price_usd, created_at, updated_at`

func scanCard(row interface{ Scan(...interface{}) error }) (*model.CatalogEntry, error) {
	var e model.CatalogEntry
	err := row.Scan(&e.ID, &e.Name, &e.SetName, &e.SetCode, &e.CollectorNumber,
		&e.ImageURI, &e.Rarity, &e.ReleasedAt, &e.PriceUSD, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetCard retrieves a catalog entry by id.
func (s *SQLiteStore) GetCard(ctx context.Context, catalogID string) (*model.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`
	entry, err := scanCard(s.db.QueryRowContext(ctx, query, catalogID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return entry, nil
}

// FindCardByName retrieves a catalog entry by exact name (case-insensitive)
// and set name. An empty setName matches only entries stored without one.
func (s *SQLiteStore) FindCardByName(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + cardColumns + ` FROM cards WHERE lower(name) = lower(?) AND lower(set_name) = lower(?) LIMIT 1`
	entry, err := scanCard(s.db.QueryRowContext(ctx, query, name, setName))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card by name: %w", err)
	}
	return entry, nil
}

// UpsertCard inserts or updates an entry. Id and name are never
// overwritten once stored; only auxiliary fields are refreshed.
func (s *SQLiteStore) UpsertCard(ctx context.Context, entry *model.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			collector_number = excluded.collector_number,
			image_uri = excluded.image_uri,
			rarity = excluded.rarity,
			released_at = excluded.released_at,
			price_usd = excluded.price_usd,
			updated_at = datetime('now')`

	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.Name, entry.SetName, entry.SetCode,
		entry.CollectorNumber, entry.ImageURI, entry.Rarity, entry.ReleasedAt, entry.PriceUSD)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

// BatchUpsertCards upserts multiple entries in one transaction.
func (s *SQLiteStore) BatchUpsertCards(ctx context.Context, entries []model.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			collector_number = excluded.collector_number,
			image_uri = excluded.image_uri,
			rarity = excluded.rarity,
			released_at = excluded.released_at,
			price_usd = excluded.price_usd,
			updated_at = datetime('now')`)
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

// CreatePlaceholder synthesizes a minimal entry with a unique id. If a
// placeholder with the same name and set already exists it is returned
// instead of creating a second one.
func (s *SQLiteStore) CreatePlaceholder(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	if existing, err := s.FindCardByName(ctx, name, setName); err == nil {
		return existing, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &model.CatalogEntry{
		ID:      uid.NewWithPrefix(model.PlaceholderIDPrefix),
		Name:    name,
		SetName: setName,
		SetCode: model.PlaceholderSetCode,
		Rarity:  model.PlaceholderRarity,
	}

	query := `
		INSERT INTO cards (id, name, set_name, set_code, rarity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'), datetime('now'))`
	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.Name, entry.SetName, entry.SetCode, entry.Rarity)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder: %w", err)
	}

	log.Printf("[SQLiteStore] Created placeholder %s for %q", entry.ID, name)
	return entry, nil
}

// ResolvePlaceholder replaces a placeholder with a resolved entry and
// repoints inventory and wishlist references to the new id.
func (s *SQLiteStore) ResolvePlaceholder(ctx context.Context, placeholderID string, resolved *model.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, placeholderID)
	if err != nil {
		return fmt.Errorf("failed to delete placeholder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			collector_number = excluded.collector_number,
			image_uri = excluded.image_uri,
			rarity = excluded.rarity,
			released_at = excluded.released_at,
			price_usd = excluded.price_usd,
			updated_at = datetime('now')`,
		resolved.ID, resolved.Name, resolved.SetName, resolved.SetCode,
		resolved.CollectorNumber, resolved.ImageURI, resolved.Rarity, resolved.ReleasedAt, resolved.PriceUSD)
	if err != nil {
		return fmt.Errorf("failed to insert resolved card: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE user_inventory SET card_id = ? WHERE card_id = ?`, resolved.ID, placeholderID); err != nil {
		return fmt.Errorf("failed to repoint inventory: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE wishlists SET card_id = ? WHERE card_id = ?`, resolved.ID, placeholderID); err != nil {
		return fmt.Errorf("failed to repoint wishlists: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("[SQLiteStore] Resolved placeholder %s -> %s", placeholderID, resolved.ID)
	return nil
}

// SearchCards finds mirrored entries whose name contains the query.
func (s *SQLiteStore) SearchCards(ctx context.Context, query string, limit int) ([]model.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE name LIKE ? ORDER BY name, released_at LIMIT ?`,
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
func (s *SQLiteStore) CountCards(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	return count, err
}

const inventoryColumns = `id, user_id, card_id, quantity, condition, language, price, for_trade, notes, created_at, updated_at`

func scanInventory(row interface{ Scan(...interface{}) error }) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.CatalogID, &rec.Quantity, &rec.Condition,
		&rec.Language, &rec.Price, &rec.ForTrade, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AddInventory persists a new inventory record.
func (s *SQLiteStore) AddInventory(ctx context.Context, rec *model.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uid.New()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `
		INSERT INTO user_inventory (` + inventoryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.OwnerID, rec.CatalogID, rec.Quantity,
		rec.Condition, rec.Language, rec.Price, rec.ForTrade, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add inventory record: %w", err)
	}
	return nil
}

// GetInventory retrieves a record by id.
func (s *SQLiteStore) GetInventory(ctx context.Context, recordID string) (*model.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + inventoryColumns + ` FROM user_inventory WHERE id = ?`
	rec, err := scanInventory(s.db.QueryRowContext(ctx, query, recordID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) listInventory(ctx context.Context, query string, args ...interface{}) ([]model.InventoryRecord, error) {
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
func (s *SQLiteStore) ListInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listInventory(ctx,
		`SELECT `+inventoryColumns+` FROM user_inventory WHERE user_id = ? ORDER BY created_at DESC`, ownerID)
}

// ListTradeInventoryByOwner lists ownerID's records marked for trade.
func (s *SQLiteStore) ListTradeInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listInventory(ctx,
		`SELECT `+inventoryColumns+` FROM user_inventory WHERE user_id = ? AND for_trade = 1 ORDER BY created_at DESC`, ownerID)
}

// UpdateInventory updates a record's mutable fields, re-asserting
// ownership in the statement.
func (s *SQLiteStore) UpdateInventory(ctx context.Context, rec *model.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE user_inventory
		SET quantity = ?, condition = ?, language = ?, price = ?, for_trade = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, query, rec.Quantity, rec.Condition, rec.Language,
		rec.Price, rec.ForTrade, rec.Notes, time.Now().UTC(), rec.ID, rec.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetForTrade sets the for-trade flag on an owned record.
func (s *SQLiteStore) SetForTrade(ctx context.Context, recordID, ownerID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `UPDATE user_inventory SET for_trade = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	res, err := s.db.ExecContext(ctx, query, value, time.Now().UTC(), recordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to set for-trade flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveInventory deletes an owned record.
func (s *SQLiteStore) RemoveInventory(ctx context.Context, recordID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_inventory WHERE id = ? AND user_id = ?`, recordID, ownerID)
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
func (s *SQLiteStore) FindTradeCandidates(ctx context.Context, catalogIDs []string, excludeOwnerID string) ([]model.InventoryRecord, error) {
	if len(catalogIDs) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(catalogIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(catalogIDs)+1)
	for _, id := range catalogIDs {
		args = append(args, id)
	}
	args = append(args, excludeOwnerID)

	query := `SELECT ` + inventoryColumns + ` FROM user_inventory
		WHERE card_id IN (` + placeholders + `) AND user_id != ? AND for_trade = 1`

	return s.listInventory(ctx, query, args...)
}

// AddWishlist persists a new wishlist record.
func (s *SQLiteStore) AddWishlist(ctx context.Context, rec *model.WishlistRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO wishlists (id, user_id, card_id, quantity, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.OwnerID, rec.CatalogID,
		rec.Quantity, rec.Priority, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist record: %w", err)
	}
	return nil
}

// ListWishlistByOwner lists all wishlist records owned by ownerID.
func (s *SQLiteStore) ListWishlistByOwner(ctx context.Context, ownerID string) ([]model.WishlistRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, card_id, quantity, priority, created_at
		 FROM wishlists WHERE user_id = ? ORDER BY priority DESC, created_at DESC`, ownerID)
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
func (s *SQLiteStore) DistinctWishlistCatalogIDs(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT card_id FROM wishlists WHERE user_id = ?`, ownerID)
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
func (s *SQLiteStore) RemoveWishlist(ctx context.Context, recordID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE id = ? AND user_id = ?`, recordID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveWishlistByCatalogID deletes owned records referencing a catalog id.
func (s *SQLiteStore) RemoveWishlistByCatalogID(ctx context.Context, ownerID, catalogID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = ? AND card_id = ?`, ownerID, catalogID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist records: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSyncProgress returns the last persisted sync state.
func (s *SQLiteStore) GetSyncProgress(ctx context.Context) (*model.SyncProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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
func (s *SQLiteStore) SaveSyncProgress(ctx context.Context, p *model.SyncProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO sync_progress (id, current_set, sets_completed, total_processed, status, error_message, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_set = excluded.current_set,
			sets_completed = excluded.sets_completed,
			total_processed = excluded.total_processed,
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, p.CurrentSet, p.SetsCompleted, p.TotalProcessed,
		p.Status, p.ErrorMessage, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save sync progress: %w", err)
	}
	return nil
}

// Stats returns statistics about the trading database.
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements the repository interfaces
var (
	_ CardMirrorRepository   = (*SQLiteStore)(nil)
	_ InventoryRepository    = (*SQLiteStore)(nil)
	_ WishlistRepository     = (*SQLiteStore)(nil)
	_ SyncProgressRepository = (*SQLiteStore)(nil)
)
