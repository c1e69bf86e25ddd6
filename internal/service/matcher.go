package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cambiacartas-api/internal/cache"
	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
)

// matchCacheKey builds the cache key for a user's match results.
func matchCacheKey(userID string) string {
	return "match:" + userID
}

// MatcherService joins a user's wishlist with every other user's
// for-trade inventory and groups the hits per counterparty.
type MatcherService struct {
	inventory repository.InventoryRepository
	wishlist  repository.WishlistRepository
	profiles  repository.ProfileRepository
	resolver  *CardResolver
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewMatcherService creates a matcher. profiles, resolver and
// resultCache may be nil; matching degrades gracefully without them.
func NewMatcherService(
	inventory repository.InventoryRepository,
	wishlist repository.WishlistRepository,
	profiles repository.ProfileRepository,
	resolver *CardResolver,
	resultCache cache.Cache,
	cacheTTL time.Duration,
) *MatcherService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &MatcherService{
		inventory: inventory,
		wishlist:  wishlist,
		profiles:  profiles,
		resolver:  resolver,
		cache:     resultCache,
		cacheTTL:  cacheTTL,
	}
}

// ComputeMatches returns, per counterparty, the for-trade records that
// satisfy some entry of the user's wishlist. Results are cached briefly
// because the underlying join touches every trader's inventory.
func (s *MatcherService) ComputeMatches(ctx context.Context, userID string) ([]model.MatchGroup, error) {
	if s.cache != nil {
		var cached []model.MatchGroup
		if data, err := s.cache.Get(ctx, matchCacheKey(userID)); err == nil {
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	groups, err := s.computeMatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(groups); err == nil {
			if err := s.cache.Set(ctx, matchCacheKey(userID), data, s.cacheTTL); err != nil {
				log.Printf("[MatcherService] Failed to cache matches for %s: %v", userID, err)
			}
		}
	}
	return groups, nil
}

func (s *MatcherService) computeMatches(ctx context.Context, userID string) ([]model.MatchGroup, error) {
	wanted, err := s.wishlist.DistinctWishlistCatalogIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		// No wishlist, no inventory scan.
		return []model.MatchGroup{}, nil
	}

	candidates, err := s.inventory.FindTradeCandidates(ctx, wanted, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []model.MatchGroup{}, nil
	}

	// Group by counterparty, preserving first-seen order.
	byOwner := make(map[string]*model.MatchGroup)
	var order []string
	catalogIDs := make([]string, 0, len(candidates))

	for _, rec := range candidates {
		group, ok := byOwner[rec.OwnerID]
		if !ok {
			group = &model.MatchGroup{CounterpartyID: rec.OwnerID}
			byOwner[rec.OwnerID] = group
			order = append(order, rec.OwnerID)
		}
		group.Cards = append(group.Cards, model.MatchCard{
			CatalogID: rec.CatalogID,
			Condition: rec.Condition,
			Language:  rec.Language,
			Quantity:  rec.Quantity,
			Price:     rec.Price,
		})
		catalogIDs = append(catalogIDs, rec.CatalogID)
	}

	s.attachProfiles(ctx, byOwner, order)
	s.attachNames(ctx, byOwner, catalogIDs)

	groups := make([]model.MatchGroup, 0, len(order))
	for _, ownerID := range order {
		groups = append(groups, *byOwner[ownerID])
	}
	return groups, nil
}

// attachProfiles decorates groups with counterparty display info. A
// failing profile backend only costs the decoration, never the match.
func (s *MatcherService) attachProfiles(ctx context.Context, byOwner map[string]*model.MatchGroup, order []string) {
	if s.profiles == nil {
		return
	}

	profiles, err := s.profiles.GetProfiles(ctx, order)
	if err != nil {
		log.Printf("[MatcherService] Profile lookup failed, returning bare ids: %v", err)
		return
	}
	for ownerID, group := range byOwner {
		if p, ok := profiles[ownerID]; ok {
			group.Counterparty = p.DisplayInfo()
		}
	}
}

// attachNames fills card names from the mirror. A card whose name cannot
// be resolved keeps its record with a sentinel name rather than being
// dropped from the results.
func (s *MatcherService) attachNames(ctx context.Context, byOwner map[string]*model.MatchGroup, catalogIDs []string) {
	var cards map[string]*model.CatalogEntry
	if s.resolver != nil {
		cards = s.resolver.ResolveAll(ctx, catalogIDs)
	}

	for _, group := range byOwner {
		for i := range group.Cards {
			if card, ok := cards[group.Cards[i].CatalogID]; ok && card != nil {
				group.Cards[i].Name = card.Name
			} else {
				group.Cards[i].Name = model.NameUnavailable
			}
		}
	}
}
