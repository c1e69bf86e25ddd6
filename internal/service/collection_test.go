package service

import (
	"context"
	"testing"

	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T) (*CollectionService, *fakeInventory, *fakeWishlist) {
	t.Helper()
	inventory := newFakeInventory()
	wishlist := newFakeWishlist()
	svc := NewCollectionService(inventory, wishlist, nil, nil)
	require.NotNil(t, svc)
	return svc, inventory, wishlist
}

func TestNormalizeCondition(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"NM", "NM", true},
		{"nm", "NM", true},
		{"", DefaultCondition, true},
		{"SP", "EX", true},
		{"MP", "GD", true},
		{"HP", "PL", true},
		{"DMG", "PR", true},
		{"mint-ish", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeCondition(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestAddInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a valid record with defaults", func(t *testing.T) {
		svc, inventory, _ := newTestCollection(t)

		rec, err := svc.AddInventory(ctx, "ana", InventoryParams{
			CatalogID: "bolt-m10",
			Quantity:  4,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, DefaultCondition, rec.Condition)
		assert.Equal(t, DefaultLanguage, rec.Language)

		stored, err := inventory.GetInventory(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana", stored.OwnerID)
	})

	t.Run("should reject invalid input without persisting", func(t *testing.T) {
		svc, inventory, _ := newTestCollection(t)

		cases := []InventoryParams{
			{CatalogID: "", Quantity: 1},
			{CatalogID: "bolt-m10", Quantity: 0},
			{CatalogID: "bolt-m10", Quantity: 1, Price: -5},
			{CatalogID: "bolt-m10", Quantity: 1, Condition: "shiny"},
			{CatalogID: "bolt-m10", Quantity: 1, Language: "xx"},
		}
		for _, params := range cases {
			_, err := svc.AddInventory(ctx, "ana", params)
			assert.ErrorIs(t, err, ErrInvalidInput, "params %+v", params)
		}
		assert.Empty(t, inventory.records)
	})
}

func TestUpdateInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject updates to records owned by others", func(t *testing.T) {
		svc, _, _ := newTestCollection(t)

		rec, err := svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "bolt-m10", Quantity: 1})
		require.NoError(t, err)

		_, err = svc.UpdateInventory(ctx, "bruno", rec.ID, InventoryParams{Quantity: 9})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("should apply new values", func(t *testing.T) {
		svc, _, _ := newTestCollection(t)

		rec, err := svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "bolt-m10", Quantity: 1})
		require.NoError(t, err)

		updated, err := svc.UpdateInventory(ctx, "ana", rec.ID, InventoryParams{
			Quantity:  3,
			Condition: "EX",
			Language:  "es",
			Price:     2.5,
			ForTrade:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Quantity)
		assert.Equal(t, "EX", updated.Condition)
		assert.True(t, updated.ForTrade)
		assert.Equal(t, "bolt-m10", updated.CatalogID)
	})
}

func TestToggleForTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("repeating the current value is a no-op success", func(t *testing.T) {
		svc, inventory, _ := newTestCollection(t)

		rec, err := svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "bolt-m10", Quantity: 1, ForTrade: true})
		require.NoError(t, err)

		require.NoError(t, svc.ToggleForTrade(ctx, "ana", rec.ID, true))
		require.NoError(t, svc.ToggleForTrade(ctx, "ana", rec.ID, false))
		require.NoError(t, svc.ToggleForTrade(ctx, "ana", rec.ID, false))

		stored, err := inventory.GetInventory(ctx, rec.ID)
		require.NoError(t, err)
		assert.False(t, stored.ForTrade)
	})

	t.Run("should hide other users' records", func(t *testing.T) {
		svc, _, _ := newTestCollection(t)

		rec, err := svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "bolt-m10", Quantity: 1})
		require.NoError(t, err)

		err = svc.ToggleForTrade(ctx, "bruno", rec.ID, true)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestAddWishlistBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("a failing id does not abort the batch", func(t *testing.T) {
		svc, _, wishlist := newTestCollection(t)
		wishlist.addErr["broken"] = assert.AnError

		result := svc.AddWishlistBulk(ctx, "ana", []string{"bolt-lea", "broken", "bolt-m10"})

		assert.Len(t, result.Added, 2)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "broken", result.Failed[0].CatalogID)
		assert.NotEmpty(t, result.Failed[0].Reason)
	})

	t.Run("empty catalog ids are rejected per entry", func(t *testing.T) {
		svc, _, _ := newTestCollection(t)

		result := svc.AddWishlistBulk(ctx, "ana", []string{""})
		assert.Empty(t, result.Added)
		assert.Len(t, result.Failed, 1)
	})
}

func TestListInventoryWithCards(t *testing.T) {
	ctx := context.Background()

	t.Run("should attach card details from the resolver", func(t *testing.T) {
		inventory := newFakeInventory()
		wishlist := newFakeWishlist()
		mirror := newFakeMirror(model.CatalogEntry{ID: "bolt-m10", Name: "Lightning Bolt"})
		resolver := NewCardResolver(mirror, newFakeCatalog())
		svc := NewCollectionService(inventory, wishlist, resolver, nil)

		_, err := svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "bolt-m10", Quantity: 2})
		require.NoError(t, err)
		_, err = svc.AddInventory(ctx, "ana", InventoryParams{CatalogID: "unknown-id", Quantity: 1})
		require.NoError(t, err)

		records, err := svc.ListInventory(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, records, 2)

		byCatalog := make(map[string]model.InventoryRecord)
		for _, rec := range records {
			byCatalog[rec.CatalogID] = rec
		}
		require.NotNil(t, byCatalog["bolt-m10"].Card)
		assert.Equal(t, "Lightning Bolt", byCatalog["bolt-m10"].Card.Name)
		// Unresolvable ids keep their record, just without details.
		assert.Nil(t, byCatalog["unknown-id"].Card)
	})
}
