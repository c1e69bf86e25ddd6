package service

import (
	"context"
	"testing"
	"time"

	"cambiacartas-api/internal/cache"
	"cambiacartas-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMatches(t *testing.T) {
	ctx := context.Background()

	seed := func() (*fakeInventory, *fakeWishlist) {
		inventory := newFakeInventory()
		wishlist := newFakeWishlist()

		// ana wants bolts and lotuses.
		wishlist.AddWishlist(ctx, &model.WishlistRecord{OwnerID: "ana", CatalogID: "bolt-m10"})
		wishlist.AddWishlist(ctx, &model.WishlistRecord{OwnerID: "ana", CatalogID: "lotus-lea"})

		// bruno trades a bolt, carla holds one but not for trade.
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "bruno", CatalogID: "bolt-m10", Quantity: 3, Condition: "NM", Language: "en", ForTrade: true,
		})
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "carla", CatalogID: "bolt-m10", Quantity: 1, Condition: "EX", Language: "es",
		})
		// ana's own copy never matches her wishlist.
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "ana", CatalogID: "lotus-lea", Quantity: 1, ForTrade: true,
		})
		return inventory, wishlist
	}

	t.Run("should group candidates per counterparty", func(t *testing.T) {
		inventory, wishlist := seed()
		mirror := newFakeMirror(model.CatalogEntry{ID: "bolt-m10", Name: "Lightning Bolt"})
		resolver := NewCardResolver(mirror, newFakeCatalog())
		profiles := &fakeProfiles{profiles: map[string]model.Profile{
			"bruno": {ID: "bruno", Username: "bruno", Email: "bruno@example.com"},
		}}

		m := NewMatcherService(inventory, wishlist, profiles, resolver, nil, time.Second)

		groups, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, groups, 1)

		group := groups[0]
		assert.Equal(t, "bruno", group.CounterpartyID)
		require.NotNil(t, group.Counterparty)
		assert.Equal(t, "bruno", group.Counterparty.Username)
		assert.Empty(t, group.Counterparty.Email)

		require.Len(t, group.Cards, 1)
		assert.Equal(t, "Lightning Bolt", group.Cards[0].Name)
		assert.Equal(t, 3, group.Cards[0].Quantity)
		assert.Equal(t, "NM", group.Cards[0].Condition)
	})

	t.Run("should build one group per counterparty", func(t *testing.T) {
		inventory := newFakeInventory()
		wishlist := newFakeWishlist()

		// diego wants a bolt and a lotus.
		wishlist.AddWishlist(ctx, &model.WishlistRecord{OwnerID: "diego", CatalogID: "bolt-m10"})
		wishlist.AddWishlist(ctx, &model.WishlistRecord{OwnerID: "diego", CatalogID: "lotus-lea"})

		// bruno trades the bolt plus a shock nobody asked for,
		// carla trades the lotus.
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "bruno", CatalogID: "bolt-m10", Quantity: 2, Condition: "NM", Language: "en", ForTrade: true,
		})
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "bruno", CatalogID: "shock-m10", Quantity: 4, Condition: "NM", Language: "en", ForTrade: true,
		})
		inventory.AddInventory(ctx, &model.InventoryRecord{
			OwnerID: "carla", CatalogID: "lotus-lea", Quantity: 1, Condition: "EX", Language: "es", ForTrade: true,
		})

		m := NewMatcherService(inventory, wishlist, nil, nil, nil, time.Second)

		groups, err := m.ComputeMatches(ctx, "diego")
		require.NoError(t, err)
		require.Len(t, groups, 2)

		byOwner := map[string]model.MatchGroup{}
		for _, g := range groups {
			byOwner[g.CounterpartyID] = g
		}

		bruno, ok := byOwner["bruno"]
		require.True(t, ok)
		require.Len(t, bruno.Cards, 1)
		assert.Equal(t, "bolt-m10", bruno.Cards[0].CatalogID)

		carla, ok := byOwner["carla"]
		require.True(t, ok)
		require.Len(t, carla.Cards, 1)
		assert.Equal(t, "lotus-lea", carla.Cards[0].CatalogID)
	})

	t.Run("empty wishlist skips the inventory scan", func(t *testing.T) {
		inventory, _ := seed()
		wishlist := newFakeWishlist()

		m := NewMatcherService(inventory, wishlist, nil, nil, nil, time.Second)

		groups, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.Zero(t, inventory.scans)
	})

	t.Run("should keep records whose name cannot be resolved", func(t *testing.T) {
		inventory, wishlist := seed()
		resolver := NewCardResolver(newFakeMirror(), newFakeCatalog())

		m := NewMatcherService(inventory, wishlist, nil, resolver, nil, time.Second)

		groups, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		require.Len(t, groups[0].Cards, 1)
		assert.Equal(t, model.NameUnavailable, groups[0].Cards[0].Name)
	})

	t.Run("should tolerate a failing profile backend", func(t *testing.T) {
		inventory, wishlist := seed()
		profiles := &fakeProfiles{err: assert.AnError}

		m := NewMatcherService(inventory, wishlist, profiles, nil, nil, time.Second)

		groups, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Nil(t, groups[0].Counterparty)
	})

	t.Run("should serve repeated calls from cache", func(t *testing.T) {
		inventory, wishlist := seed()
		memCache := cache.NewMemoryCache()
		defer memCache.Close()

		m := NewMatcherService(inventory, wishlist, nil, nil, memCache, time.Minute)

		first, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)
		second, err := m.ComputeMatches(ctx, "ana")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inventory.scans)
	})
}
