package service

import (
	"context"
	"testing"

	"cambiacartas-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject empty names", func(t *testing.T) {
		r := NewReconciler(newFakeMirror(), newFakeCatalog())

		_, err := r.Resolve(ctx, ResolveRequest{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("should prefer the mirror over the catalog", func(t *testing.T) {
		mirror := newFakeMirror(model.CatalogEntry{ID: "bolt-m10", Name: "Lightning Bolt", SetName: "Magic 2010"})
		catalog := newFakeCatalog()
		r := NewReconciler(mirror, catalog)

		entries, err := r.Resolve(ctx, ResolveRequest{Name: "Lightning Bolt", SetName: "Magic 2010"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "bolt-m10", entries[0].ID)
		assert.Zero(t, catalog.lookups)
	})

	t.Run("should resolve a single printing", func(t *testing.T) {
		mirror := newFakeMirror()
		catalog := newFakeCatalog()
		catalog.printings["black lotus"] = []model.CatalogEntry{
			{ID: "lotus-lea", Name: "Black Lotus", SetName: "Limited Edition Alpha"},
		}
		r := NewReconciler(mirror, catalog)

		entries, err := r.Resolve(ctx, ResolveRequest{Name: "Black Lotus"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "lotus-lea", entries[0].ID)

		// The printing is mirrored for the next lookup.
		mirrored, err := mirror.GetCard(ctx, "lotus-lea")
		require.NoError(t, err)
		assert.Equal(t, "Black Lotus", mirrored.Name)
	})

	t.Run("should surface ambiguity with candidates", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.printings["lightning bolt"] = []model.CatalogEntry{
			{ID: "bolt-lea", Name: "Lightning Bolt", SetName: "Limited Edition Alpha"},
			{ID: "bolt-m10", Name: "Lightning Bolt", SetName: "Magic 2010"},
		}
		r := NewReconciler(newFakeMirror(), catalog)

		_, err := r.Resolve(ctx, ResolveRequest{Name: "Lightning Bolt"})
		var ambiguous *AmbiguousError
		require.ErrorAs(t, err, &ambiguous)
		assert.Len(t, ambiguous.Candidates, 2)
	})

	t.Run("should return every printing on request", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.printings["lightning bolt"] = []model.CatalogEntry{
			{ID: "bolt-lea", Name: "Lightning Bolt"},
			{ID: "bolt-m10", Name: "Lightning Bolt"},
		}
		mirror := newFakeMirror()
		r := NewReconciler(mirror, catalog)

		entries, err := r.Resolve(ctx, ResolveRequest{Name: "Lightning Bolt", AllPrintings: true})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		count, _ := mirror.CountCards(ctx)
		assert.EqualValues(t, 2, count)
	})

	t.Run("should create a placeholder when nothing matches", func(t *testing.T) {
		r := NewReconciler(newFakeMirror(), newFakeCatalog())

		entries, err := r.Resolve(ctx, ResolveRequest{Name: "Carta Inventada"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].IsPlaceholder())
		assert.Equal(t, "Carta Inventada", entries[0].Name)
		assert.Equal(t, model.PlaceholderRarity, entries[0].Rarity)
	})
}

func TestReconcilerResolveDirect(t *testing.T) {
	ctx := context.Background()

	t.Run("should give the same placeholder for repeated misses", func(t *testing.T) {
		r := NewReconciler(newFakeMirror(), newFakeCatalog())

		first, err := r.ResolveDirect(ctx, "Carta Inventada", "", "")
		require.NoError(t, err)
		second, err := r.ResolveDirect(ctx, "Carta Inventada", "", "")
		require.NoError(t, err)

		assert.True(t, first.IsPlaceholder())
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("should not surface ambiguity", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.printings["lightning bolt"] = []model.CatalogEntry{
			{ID: "bolt-lea", Name: "Lightning Bolt"},
			{ID: "bolt-m10", Name: "Lightning Bolt"},
		}
		r := NewReconciler(newFakeMirror(), catalog)

		entry, err := r.ResolveDirect(ctx, "Lightning Bolt", "", "")
		require.NoError(t, err)
		// No exact lookup hit and no set to narrow down: bulk import
		// still moves forward on a placeholder.
		assert.True(t, entry.IsPlaceholder())
	})

	t.Run("should use the catalog when the mirror misses", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.byName["counterspell"] = model.CatalogEntry{ID: "csp-7ed", Name: "Counterspell"}
		mirror := newFakeMirror()
		r := NewReconciler(mirror, catalog)

		entry, err := r.ResolveDirect(ctx, "Counterspell", "", "")
		require.NoError(t, err)
		assert.Equal(t, "csp-7ed", entry.ID)

		_, err = mirror.GetCard(ctx, "csp-7ed")
		assert.NoError(t, err)
	})
}
