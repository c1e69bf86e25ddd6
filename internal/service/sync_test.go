package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/scryfall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSetCatalog struct {
	sets    []scryfall.Set
	cards   map[string][]model.CatalogEntry
	failSet string
	fetched []string
}

func (f *fakeSetCatalog) ListSets(ctx context.Context) ([]scryfall.Set, error) {
	return f.sets, nil
}

func (f *fakeSetCatalog) CardsBySet(ctx context.Context, setCode string) ([]model.CatalogEntry, error) {
	if setCode == f.failSet {
		return nil, fmt.Errorf("upstream down")
	}
	f.fetched = append(f.fetched, setCode)
	return f.cards[setCode], nil
}

type fakeProgress struct {
	mu sync.Mutex
	p  *model.SyncProgress
}

func (f *fakeProgress) GetSyncProgress(ctx context.Context) (*model.SyncProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.p == nil {
		return nil, repository.ErrNotFound
	}
	copied := *f.p
	return &copied, nil
}

func (f *fakeProgress) SaveSyncProgress(ctx context.Context, p *model.SyncProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.p = &copied
	return nil
}

func TestCatalogSync(t *testing.T) {
	ctx := context.Background()

	sets := []scryfall.Set{
		{Code: "lea", Name: "Limited Edition Alpha"},
		{Code: "mtgo", Name: "Magic Online Promos", Digital: true},
		{Code: "m10", Name: "Magic 2010"},
	}
	cards := map[string][]model.CatalogEntry{
		"lea": {{ID: "lotus-lea", Name: "Black Lotus"}},
		"m10": {{ID: "bolt-m10", Name: "Lightning Bolt"}, {ID: "giant-m10", Name: "Hill Giant"}},
	}

	t.Run("should sync every physical set and record completion", func(t *testing.T) {
		catalog := &fakeSetCatalog{sets: sets, cards: cards}
		mirror := newFakeMirror()
		progress := &fakeProgress{}

		svc := NewCatalogSyncService(catalog, mirror, progress, nil, SyncConfig{})
		require.NoError(t, svc.syncAll(ctx))

		// Digital sets are skipped.
		assert.Equal(t, []string{"lea", "m10"}, catalog.fetched)

		count, _ := mirror.CountCards(ctx)
		assert.EqualValues(t, 3, count)

		p, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusCompleted, p.Status)
		assert.Equal(t, 2, p.SetsCompleted)
		assert.Equal(t, 3, p.TotalProcessed)
		assert.Empty(t, p.CurrentSet)
	})

	t.Run("should record failures and resume at the failed set", func(t *testing.T) {
		catalog := &fakeSetCatalog{sets: sets, cards: cards, failSet: "m10"}
		mirror := newFakeMirror()
		progress := &fakeProgress{}

		svc := NewCatalogSyncService(catalog, mirror, progress, nil, SyncConfig{})
		require.Error(t, svc.syncAll(ctx))

		p, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusError, p.Status)
		assert.Equal(t, "m10", p.CurrentSet)
		assert.NotEmpty(t, p.ErrorMessage)

		// The retry picks up at the failed set, not from scratch.
		catalog.failSet = ""
		catalog.fetched = nil
		require.NoError(t, svc.syncAll(ctx))
		assert.Equal(t, []string{"m10"}, catalog.fetched)

		p, err = svc.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusCompleted, p.Status)
	})

	t.Run("should restart from scratch when the resume set disappeared", func(t *testing.T) {
		catalog := &fakeSetCatalog{sets: sets, cards: cards}
		mirror := newFakeMirror()
		progress := &fakeProgress{p: &model.SyncProgress{
			Status:     model.SyncStatusError,
			CurrentSet: "gone",
		}}

		svc := NewCatalogSyncService(catalog, mirror, progress, nil, SyncConfig{})
		require.NoError(t, svc.syncAll(ctx))

		// Every physical set is walked, not silently skipped.
		assert.Equal(t, []string{"lea", "m10"}, catalog.fetched)

		p, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SyncStatusCompleted, p.Status)
		assert.Equal(t, 2, p.SetsCompleted)
	})
}
