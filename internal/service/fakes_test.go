package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
	"cambiacartas-api/pkg/uid"
)

// fakeMirror is an in-memory CardMirrorRepository for service tests.
type fakeMirror struct {
	mu      sync.Mutex
	cards   map[string]model.CatalogEntry
	upserts int
}

func newFakeMirror(entries ...model.CatalogEntry) *fakeMirror {
	m := &fakeMirror{cards: make(map[string]model.CatalogEntry)}
	for _, e := range entries {
		m.cards[e.ID] = e
	}
	return m
}

func (m *fakeMirror) GetCard(ctx context.Context, catalogID string) (*model.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.cards[catalogID]; ok {
		return &entry, nil
	}
	return nil, repository.ErrNotFound
}

func (m *fakeMirror) FindCardByName(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.cards {
		if strings.EqualFold(entry.Name, name) && strings.EqualFold(entry.SetName, setName) {
			e := entry
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *fakeMirror) UpsertCard(ctx context.Context, entry *model.CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[entry.ID] = *entry
	m.upserts++
	return nil
}

func (m *fakeMirror) BatchUpsertCards(ctx context.Context, entries []model.CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		m.cards[entry.ID] = entry
		m.upserts++
	}
	return nil
}

func (m *fakeMirror) CreatePlaceholder(ctx context.Context, name, setName string) (*model.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.cards {
		if entry.IsPlaceholder() && strings.EqualFold(entry.Name, name) && strings.EqualFold(entry.SetName, setName) {
			e := entry
			return &e, nil
		}
	}
	entry := model.CatalogEntry{
		ID:      model.PlaceholderIDPrefix + uid.New(),
		Name:    name,
		SetName: setName,
		SetCode: model.PlaceholderSetCode,
		Rarity:  model.PlaceholderRarity,
	}
	m.cards[entry.ID] = entry
	return &entry, nil
}

func (m *fakeMirror) ResolvePlaceholder(ctx context.Context, placeholderID string, resolved *model.CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[placeholderID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.cards, placeholderID)
	m.cards[resolved.ID] = *resolved
	return nil
}

func (m *fakeMirror) SearchCards(ctx context.Context, query string, limit int) ([]model.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CatalogEntry
	for _, entry := range m.cards {
		if strings.Contains(strings.ToLower(entry.Name), strings.ToLower(query)) {
			out = append(out, entry)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *fakeMirror) CountCards(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.cards)), nil
}

// fakeCatalog is a canned CatalogClient for service tests.
type fakeCatalog struct {
	byName    map[string]model.CatalogEntry
	byID      map[string]model.CatalogEntry
	printings map[string][]model.CatalogEntry
	lookups   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byName:    make(map[string]model.CatalogEntry),
		byID:      make(map[string]model.CatalogEntry),
		printings: make(map[string][]model.CatalogEntry),
	}
}

func (c *fakeCatalog) LookupByName(ctx context.Context, exactName, setCode string) (*model.CatalogEntry, error) {
	c.lookups++
	if entry, ok := c.byName[strings.ToLower(exactName)]; ok {
		return &entry, nil
	}
	return nil, fmt.Errorf("card not found")
}

func (c *fakeCatalog) LookupByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	c.lookups++
	if entry, ok := c.byID[id]; ok {
		return &entry, nil
	}
	return nil, fmt.Errorf("card not found")
}

func (c *fakeCatalog) ListPrintings(ctx context.Context, name string) []model.CatalogEntry {
	c.lookups++
	return c.printings[strings.ToLower(name)]
}

func (c *fakeCatalog) Suggest(ctx context.Context, prefix string) []string {
	return nil
}

// fakeInventory is an in-memory InventoryRepository.
type fakeInventory struct {
	mu           sync.Mutex
	records      map[string]model.InventoryRecord
	candidateErr error
	scans        int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{records: make(map[string]model.InventoryRecord)}
}

func (f *fakeInventory) AddInventory(ctx context.Context, rec *model.InventoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uid.New()
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeInventory) GetInventory(ctx context.Context, recordID string) (*model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[recordID]; ok {
		return &rec, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeInventory) ListInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InventoryRecord
	for _, rec := range f.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeInventory) ListTradeInventoryByOwner(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InventoryRecord
	for _, rec := range f.records {
		if rec.OwnerID == ownerID && rec.ForTrade {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeInventory) UpdateInventory(ctx context.Context, rec *model.InventoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.records[rec.ID]
	if !ok || existing.OwnerID != rec.OwnerID {
		return repository.ErrNotFound
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeInventory) SetForTrade(ctx context.Context, recordID, ownerID string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	rec.ForTrade = value
	f.records[recordID] = rec
	return nil
}

func (f *fakeInventory) RemoveInventory(ctx context.Context, recordID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.records, recordID)
	return nil
}

func (f *fakeInventory) FindTradeCandidates(ctx context.Context, catalogIDs []string, excludeOwnerID string) ([]model.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.candidateErr != nil {
		return nil, f.candidateErr
	}

	wanted := make(map[string]bool, len(catalogIDs))
	for _, id := range catalogIDs {
		wanted[id] = true
	}

	var out []model.InventoryRecord
	for _, rec := range f.records {
		if rec.ForTrade && rec.OwnerID != excludeOwnerID && wanted[rec.CatalogID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeWishlist is an in-memory WishlistRepository.
type fakeWishlist struct {
	mu      sync.Mutex
	records map[string]model.WishlistRecord
	addErr  map[string]error
}

func newFakeWishlist() *fakeWishlist {
	return &fakeWishlist{
		records: make(map[string]model.WishlistRecord),
		addErr:  make(map[string]error),
	}
}

func (f *fakeWishlist) AddWishlist(ctx context.Context, rec *model.WishlistRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addErr[rec.CatalogID]; err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uid.New()
	}
	f.records[rec.ID] = *rec
	return nil
}

func (f *fakeWishlist) ListWishlistByOwner(ctx context.Context, ownerID string) ([]model.WishlistRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WishlistRecord
	for _, rec := range f.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeWishlist) DistinctWishlistCatalogIDs(ctx context.Context, ownerID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, rec := range f.records {
		if rec.OwnerID == ownerID && !seen[rec.CatalogID] {
			seen[rec.CatalogID] = true
			out = append(out, rec.CatalogID)
		}
	}
	return out, nil
}

func (f *fakeWishlist) RemoveWishlist(ctx context.Context, recordID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[recordID]
	if !ok || rec.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.records, recordID)
	return nil
}

func (f *fakeWishlist) RemoveWishlistByCatalogID(ctx context.Context, ownerID, catalogID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.records {
		if rec.OwnerID == ownerID && rec.CatalogID == catalogID {
			delete(f.records, id)
		}
	}
	return nil
}

// fakeProfiles is a canned ProfileRepository.
type fakeProfiles struct {
	profiles map[string]model.Profile
	err      error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) GetProfiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]model.Profile)
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
