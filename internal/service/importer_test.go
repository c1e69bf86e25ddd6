package service

import (
	"context"
	"strings"
	"testing"

	"cambiacartas-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(catalog *fakeCatalog) (*ImporterService, *fakeInventory, *fakeWishlist) {
	mirror := newFakeMirror()
	inventory := newFakeInventory()
	wishlist := newFakeWishlist()
	reconciler := NewReconciler(mirror, catalog)
	collection := NewCollectionService(inventory, wishlist, nil, nil)
	return NewImporterService(reconciler, collection), inventory, wishlist
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("should import a plain decklist into inventory", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.byName["lightning bolt"] = model.CatalogEntry{ID: "bolt-m10", Name: "Lightning Bolt"}
		importer, inventory, _ := newTestImporter(catalog)

		input := "4x Lightning Bolt\nCarta Inventada\n"
		report, err := importer.Import(ctx, "ana", FormatText, TargetInventory, strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 2, report.Imported)
		assert.Equal(t, 1, report.Placeholders)
		assert.Zero(t, report.Failed)

		records, err := inventory.ListInventoryByOwner(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, records, 2)

		byCatalog := make(map[string]model.InventoryRecord)
		for _, rec := range records {
			byCatalog[rec.CatalogID] = rec
		}
		bolt := byCatalog["bolt-m10"]
		assert.Equal(t, 4, bolt.Quantity)
		assert.Equal(t, DefaultCondition, bolt.Condition)
		assert.Equal(t, DefaultLanguage, bolt.Language)
	})

	t.Run("should map foreign grading scales from CSV", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.byName["counterspell"] = model.CatalogEntry{ID: "csp-7ed", Name: "Counterspell"}
		importer, inventory, _ := newTestImporter(catalog)

		input := "name,quantity,condition\nCounterspell,2,SP\n"
		report, err := importer.Import(ctx, "ana", FormatCSV, TargetInventory, strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Imported)

		records, err := inventory.ListInventoryByOwner(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, model.ConditionExcellent, records[0].Condition)
	})

	t.Run("should import into the wishlist", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.byName["counterspell"] = model.CatalogEntry{ID: "csp-7ed", Name: "Counterspell"}
		importer, inventory, wishlist := newTestImporter(catalog)

		report, err := importer.Import(ctx, "ana", FormatText, TargetWishlist, strings.NewReader("2 Counterspell\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Imported)

		assert.Empty(t, inventory.records)
		ids, err := wishlist.DistinctWishlistCatalogIDs(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, []string{"csp-7ed"}, ids)
	})

	t.Run("bad rows are reported without aborting", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.byName["counterspell"] = model.CatalogEntry{ID: "csp-7ed", Name: "Counterspell"}
		importer, _, _ := newTestImporter(catalog)

		input := "name,quantity\nCounterspell,2\nNo Quantity Card,zero\n"
		report, err := importer.Import(ctx, "ana", FormatCSV, TargetInventory, strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 1, report.Imported)
		assert.Equal(t, 1, report.Failed)
	})

	t.Run("should reject unknown targets and formats", func(t *testing.T) {
		importer, _, _ := newTestImporter(newFakeCatalog())

		_, err := importer.Import(ctx, "ana", FormatText, "both", strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = importer.Import(ctx, "ana", "pdf", TargetInventory, strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
