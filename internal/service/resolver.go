package service

import (
	"context"
	"log"
	"sync"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"

	"golang.org/x/sync/semaphore"
)

// CatalogClient is the subset of the external catalog consumed by the
// resolution pipeline.
type CatalogClient interface {
	LookupByName(ctx context.Context, exactName, setCode string) (*model.CatalogEntry, error)
	LookupByID(ctx context.Context, id string) (*model.CatalogEntry, error)
	ListPrintings(ctx context.Context, name string) []model.CatalogEntry
	Suggest(ctx context.Context, prefix string) []string
}

// defaultResolveConcurrency bounds simultaneous external lookups during
// batch detail resolution.
const defaultResolveConcurrency = 8

// CardResolver resolves catalog ids to full entries for a batch of
// records: mirror first, external catalog as fallback. Lookups run
// concurrently with no ordering dependency; a single slow or failing
// lookup degrades only its own record.
type CardResolver struct {
	mirror  repository.CardMirrorRepository
	catalog CatalogClient
	sem     *semaphore.Weighted
}

// NewCardResolver creates a card resolver.
func NewCardResolver(mirror repository.CardMirrorRepository, catalog CatalogClient) *CardResolver {
	return &CardResolver{
		mirror:  mirror,
		catalog: catalog,
		sem:     semaphore.NewWeighted(defaultResolveConcurrency),
	}
}

// Resolve resolves a single catalog id.
func (r *CardResolver) Resolve(ctx context.Context, catalogID string) (*model.CatalogEntry, error) {
	if entry, err := r.mirror.GetCard(ctx, catalogID); err == nil {
		return entry, nil
	}

	entry, err := r.catalog.LookupByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}

	// Backfill the mirror so the next resolution stays local.
	if upsertErr := r.mirror.UpsertCard(ctx, entry); upsertErr != nil {
		log.Printf("[CardResolver] Mirror backfill failed for %s: %v", catalogID, upsertErr)
	}
	return entry, nil
}

// ResolveAll resolves a batch of catalog ids concurrently and waits for
// every lookup to settle. Ids that could not be resolved are absent from
// the result; callers substitute placeholder display values instead of
// dropping records.
func (r *CardResolver) ResolveAll(ctx context.Context, catalogIDs []string) map[string]*model.CatalogEntry {
	unique := make([]string, 0, len(catalogIDs))
	seen := make(map[string]bool, len(catalogIDs))
	for _, id := range catalogIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	results := make(map[string]*model.CatalogEntry, len(unique))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range unique {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer r.sem.Release(1)

			entry, err := r.Resolve(ctx, id)
			if err != nil {
				return
			}

			mu.Lock()
			results[id] = entry
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return results
}
