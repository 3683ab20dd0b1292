package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
	"github.com/ecom-auditor/backend/internal/infrastructure/persistence"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// TestListingRepository_Integration tests the ListingRepository against a real PostgreSQL database
func TestListingRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormListingRepository(testDB.DB)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Create and FindByID", func(t *testing.T) {
		listing, err := catalog.NewListing(userID, marketplace.Wildberries, "12345678", "Ceramic mug")
		require.NoError(t, err)
		hours := 24
		listing.Brand = "HomeWare"
		listing.Category = "Посуда"
		listing.Price = decimal.NewFromInt(990)
		listing.DeliveryTimeHours = &hours
		require.NoError(t, listing.SetSEOKeywords([]string{"кружка", "кружка керамическая"}))

		require.NoError(t, repo.Create(ctx, listing))

		found, err := repo.FindByID(ctx, userID, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.ID, found.ID)
		assert.Equal(t, "12345678", found.SKU)
		assert.Equal(t, "wildberries", found.Marketplace)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(990)))
		assert.Equal(t, catalog.ListingStatusActive, found.Status)
		require.NotNil(t, found.DeliveryTimeHours)
		assert.Equal(t, 24, *found.DeliveryTimeHours)
		assert.Equal(t, []string{"кружка", "кружка керамическая"}, found.SEOKeywords())
	})

	t.Run("Create duplicate SKU returns already exists", func(t *testing.T) {
		dup, err := catalog.NewListing(userID, marketplace.Wildberries, "12345678", "Same mug again")
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("Same SKU for another user is allowed", func(t *testing.T) {
		other, err := catalog.NewListing(uuid.New(), marketplace.Wildberries, "12345678", "Other seller mug")
		require.NoError(t, err)

		assert.NoError(t, repo.Create(ctx, other))
	})

	t.Run("FindBySKU and Exists", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, userID, "wildberries", "12345678")
		require.NoError(t, err)
		assert.Equal(t, "Ceramic mug", found.Name)

		exists, err := repo.Exists(ctx, userID, "wildberries", "12345678")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, userID, "ozon", "12345678")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Update persists cost changes", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, userID, "wildberries", "12345678")
		require.NoError(t, err)

		require.NoError(t, found.SetCosts(decimal.NewFromInt(400), decimal.NewFromInt(80)))
		require.NoError(t, repo.Update(ctx, found))

		reloaded, err := repo.FindByID(ctx, userID, found.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.CostPrice.Equal(decimal.NewFromInt(400)))
		assert.True(t, reloaded.LogisticsCost.Equal(decimal.NewFromInt(80)))
	})

	t.Run("List filters by marketplace", func(t *testing.T) {
		ozonListing, err := catalog.NewListing(userID, marketplace.Ozon, "ozon-sku-1", "Ozon kettle")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, ozonListing))

		listings, total, err := repo.List(ctx, userID, catalog.ListingFilter{
			Marketplace: "ozon",
			Limit:       10,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, listings, 1)
		assert.Equal(t, "ozon-sku-1", listings[0].SKU)

		_, total, err = repo.List(ctx, userID, catalog.ListingFilter{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Delete is scoped to the owner", func(t *testing.T) {
		listing, err := repo.FindBySKU(ctx, userID, "ozon", "ozon-sku-1")
		require.NoError(t, err)

		err = repo.Delete(ctx, uuid.New(), listing.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, userID, listing.ID))

		_, err = repo.FindByID(ctx, userID, listing.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
