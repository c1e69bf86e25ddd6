package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cambiacartas-api/internal/cache"
	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
)

// Defaults applied when a record omits condition or language.
const (
	DefaultCondition = model.ConditionNearMint
	DefaultLanguage  = "en"
)

// conditionAliases maps grading scales used by other tools onto ours.
var conditionAliases = map[string]string{
	"SP":  model.ConditionExcellent,
	"MP":  model.ConditionGood,
	"HP":  model.ConditionPlayed,
	"DMG": model.ConditionPoor,
}

// NormalizeCondition maps a free-form condition string to a canonical
// condition code, or returns false when it is unrecognizable.
func NormalizeCondition(c string) (string, bool) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCondition, true
	}
	if model.IsValidCondition(c) {
		return c, true
	}
	if mapped, ok := conditionAliases[c]; ok {
		return mapped, true
	}
	return "", false
}

// InventoryParams are the user-settable fields of an inventory record.
type InventoryParams struct {
	CatalogID string
	Quantity  int
	Condition string
	Language  string
	Price     float64
	ForTrade  bool
	Notes     string
}

func (p *InventoryParams) validate() error {
	if p.CatalogID == "" {
		return fmt.Errorf("%w: catalog_id is required", ErrInvalidInput)
	}
	if p.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	cond, ok := NormalizeCondition(p.Condition)
	if !ok {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidInput, p.Condition)
	}
	p.Condition = cond

	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if !model.IsValidLanguage(p.Language) {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, p.Language)
	}
	return nil
}

// CollectionService handles inventory and wishlist business logic. Every
// mutation re-asserts ownership even though the handler also authorizes,
// as defense in depth against stale references.
type CollectionService struct {
	inventory repository.InventoryRepository
	wishlist  repository.WishlistRepository
	resolver  *CardResolver
	cache     cache.Cache
}

// NewCollectionService creates a collection service.
// Returns nil if either repository is nil (required dependencies).
func NewCollectionService(
	inventory repository.InventoryRepository,
	wishlist repository.WishlistRepository,
	resolver *CardResolver,
	resultCache cache.Cache,
) *CollectionService {
	if inventory == nil || wishlist == nil {
		return nil
	}
	return &CollectionService{
		inventory: inventory,
		wishlist:  wishlist,
		resolver:  resolver,
		cache:     resultCache,
	}
}

// AddInventory validates and persists a new holding.
func (s *CollectionService) AddInventory(ctx context.Context, ownerID string, p InventoryParams) (*model.InventoryRecord, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	rec := &model.InventoryRecord{
		OwnerID:   ownerID,
		CatalogID: p.CatalogID,
		Quantity:  p.Quantity,
		Condition: p.Condition,
		Language:  p.Language,
		Price:     p.Price,
		ForTrade:  p.ForTrade,
		Notes:     p.Notes,
	}
	if err := s.inventory.AddInventory(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidateMatches(ctx, ownerID)
	return rec, nil
}

// UpdateInventory applies new field values to an owned record.
func (s *CollectionService) UpdateInventory(ctx context.Context, ownerID, recordID string, p InventoryParams) (*model.InventoryRecord, error) {
	existing, err := s.inventory.GetInventory(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != ownerID {
		// Indistinguishable from a missing record on purpose.
		return nil, repository.ErrNotFound
	}

	if p.CatalogID == "" {
		p.CatalogID = existing.CatalogID
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	existing.Quantity = p.Quantity
	existing.Condition = p.Condition
	existing.Language = p.Language
	existing.Price = p.Price
	existing.ForTrade = p.ForTrade
	existing.Notes = p.Notes

	if err := s.inventory.UpdateInventory(ctx, existing); err != nil {
		return nil, err
	}

	s.invalidateMatches(ctx, ownerID)
	return existing, nil
}

// ToggleForTrade sets the for-trade flag. Calling it with the current
// value is a no-op success.
func (s *CollectionService) ToggleForTrade(ctx context.Context, ownerID, recordID string, value bool) error {
	rec, err := s.inventory.GetInventory(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	if rec.ForTrade == value {
		return nil
	}

	if err := s.inventory.SetForTrade(ctx, recordID, ownerID, value); err != nil {
		return err
	}

	s.invalidateMatches(ctx, ownerID)
	return nil
}

// RemoveInventory deletes an owned record.
func (s *CollectionService) RemoveInventory(ctx context.Context, ownerID, recordID string) error {
	if err := s.inventory.RemoveInventory(ctx, recordID, ownerID); err != nil {
		return err
	}
	s.invalidateMatches(ctx, ownerID)
	return nil
}

// ListInventory lists the owner's holdings with card details attached.
func (s *CollectionService) ListInventory(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	records, err := s.inventory.ListInventoryByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.attachInventoryCards(ctx, records)
	return records, nil
}

// ListTradeInventory lists another user's for-trade holdings with card
// details attached. Safe to expose: only for-trade records are returned.
func (s *CollectionService) ListTradeInventory(ctx context.Context, ownerID string) ([]model.InventoryRecord, error) {
	records, err := s.inventory.ListTradeInventoryByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.attachInventoryCards(ctx, records)
	return records, nil
}

func (s *CollectionService) attachInventoryCards(ctx context.Context, records []model.InventoryRecord) {
	if s.resolver == nil || len(records) == 0 {
		return
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.CatalogID
	}
	cards := s.resolver.ResolveAll(ctx, ids)
	for i := range records {
		records[i].Card = cards[records[i].CatalogID]
	}
}

// AddWishlist persists a new wishlist record.
func (s *CollectionService) AddWishlist(ctx context.Context, ownerID, catalogID string, quantity, priority int) (*model.WishlistRecord, error) {
	if catalogID == "" {
		return nil, fmt.Errorf("%w: catalog_id is required", ErrInvalidInput)
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	rec := &model.WishlistRecord{
		OwnerID:   ownerID,
		CatalogID: catalogID,
		Quantity:  quantity,
		Priority:  priority,
	}
	if err := s.wishlist.AddWishlist(ctx, rec); err != nil {
		return nil, err
	}

	s.invalidateMatches(ctx, ownerID)
	return rec, nil
}

// AddWishlistBulk creates one wishlist record per catalog id (the "all
// printings" path). A failing id is skipped and reported; the rest of
// the batch still succeeds.
func (s *CollectionService) AddWishlistBulk(ctx context.Context, ownerID string, catalogIDs []string) model.BulkAddResult {
	var result model.BulkAddResult

	for _, catalogID := range catalogIDs {
		rec, err := s.AddWishlist(ctx, ownerID, catalogID, 1, 0)
		if err != nil {
			log.Printf("[CollectionService] Bulk wishlist add failed for %s: %v", catalogID, err)
			result.Failed = append(result.Failed, model.BulkAddFailure{
				CatalogID: catalogID,
				Reason:    err.Error(),
			})
			continue
		}
		result.Added = append(result.Added, *rec)
	}

	return result
}

// RemoveWishlist deletes an owned wishlist record by record id.
func (s *CollectionService) RemoveWishlist(ctx context.Context, ownerID, recordID string) error {
	if err := s.wishlist.RemoveWishlist(ctx, recordID, ownerID); err != nil {
		return err
	}
	s.invalidateMatches(ctx, ownerID)
	return nil
}

// RemoveWishlistByCatalogID deletes owned wishlist records referencing a
// catalog id.
func (s *CollectionService) RemoveWishlistByCatalogID(ctx context.Context, ownerID, catalogID string) error {
	if err := s.wishlist.RemoveWishlistByCatalogID(ctx, ownerID, catalogID); err != nil {
		return err
	}
	s.invalidateMatches(ctx, ownerID)
	return nil
}

// ListWishlist lists the owner's wishlist with card details attached.
func (s *CollectionService) ListWishlist(ctx context.Context, ownerID string) ([]model.WishlistRecord, error) {
	records, err := s.wishlist.ListWishlistByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.resolver != nil && len(records) > 0 {
		ids := make([]string, len(records))
		for i, rec := range records {
			ids[i] = rec.CatalogID
		}
		cards := s.resolver.ResolveAll(ctx, ids)
		for i := range records {
			records[i].Card = cards[records[i].CatalogID]
		}
	}
	return records, nil
}

// invalidateMatches drops the owner's cached match results. Other users'
// caches expire on their own short TTL.
func (s *CollectionService) invalidateMatches(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, matchCacheKey(ownerID)); err != nil {
		log.Printf("[CollectionService] Match cache invalidation failed for %s: %v", ownerID, err)
	}
}
