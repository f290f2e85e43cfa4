package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := pkgdb.Open(context.Background(), pkgdb.Options{Driver: pkgdb.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := New(db)
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

func seedProduct(t *testing.T, r *GormRepo, slug string) *models.Product {
	t.Helper()
	ctx := context.Background()

	var cat models.Category
	require.NoError(t, r.DB.Where(models.Category{Slug: "tools"}).Attrs(models.Category{Name: "Tools"}).FirstOrCreate(&cat).Error)

	p := &models.Product{CategoryID: cat.ID, Slug: slug, Name: slug, Price: 10, IsActive: true}
	require.NoError(t, r.CreateProduct(ctx, p))
	return p
}

func TestCart_AddMergesQuantity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "hammer")

	first := &models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, first))

	second := &models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 5, second.Quantity)

	items, err := r.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "hammer", items[0].Product.Slug)
}

func TestCart_MutationsScopedToOwner(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "saw")

	item := &models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 1}
	require.NoError(t, r.AddToCart(ctx, item))

	_, err := r.UpdateCartQuantity(ctx, 2, item.ID, 4)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.True(t, errors.Is(r.DeleteCartItem(ctx, 2, item.ID), gorm.ErrRecordNotFound))

	updated, err := r.UpdateCartQuantity(ctx, 1, item.ID, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 4, updated.Quantity)

	require.NoError(t, r.DeleteCartItem(ctx, 1, item.ID))
	assert.True(t, errors.Is(r.DeleteCartItem(ctx, 1, item.ID), gorm.ErrRecordNotFound))
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "drill")

	a, err := r.AddToWishlist(ctx, 7, p.ID)
	require.NoError(t, err)
	b, err := r.AddToWishlist(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	assert.True(t, errors.Is(r.DeleteWishlistItem(ctx, 8, a.ID), gorm.ErrRecordNotFound))
	require.NoError(t, r.DeleteWishlistItem(ctx, 7, a.ID))

	items, err := r.GetWishlist(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBundle_DeleteItemScopedToBundle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "level")

	b1 := &models.Bundle{Name: "Starter", Slug: "starter"}
	b2 := &models.Bundle{Name: "Pro", Slug: "pro"}
	require.NoError(t, r.CreateBundle(ctx, b1))
	require.NoError(t, r.CreateBundle(ctx, b2))

	item := &models.BundleItem{BundleID: b1.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, r.AddBundleItem(ctx, item))

	assert.True(t, errors.Is(r.DeleteBundleItem(ctx, b2.ID, item.ID), gorm.ErrRecordNotFound))

	got, err := r.GetBundle(ctx, b1.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "level", got.Items[0].Product.Slug)

	require.NoError(t, r.DeleteBundleItem(ctx, b1.ID, item.ID))
}

func TestActiveDiscount(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d, err := r.ActiveDiscount(ctx, now)
	require.NoError(t, err)
	assert.Nil(t, d)

	expired := &models.Discount{Name: "old", Percentage: 10, IsActive: true,
		StartDate: now.Add(-72 * time.Hour), EndDate: now.Add(-48 * time.Hour), CreatedAt: now.Add(-72 * time.Hour)}
	inactive := &models.Discount{Name: "off", Percentage: 15, IsActive: false,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), CreatedAt: now.Add(-time.Hour)}
	older := &models.Discount{Name: "spring", Percentage: 20, IsActive: true,
		StartDate: now.Add(-24 * time.Hour), EndDate: now.Add(24 * time.Hour), CreatedAt: now.Add(-24 * time.Hour)}
	newer := &models.Discount{Name: "summer", Percentage: 25, IsActive: true,
		StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(2 * time.Hour), CreatedAt: now.Add(-2 * time.Hour)}
	for _, d := range []*models.Discount{expired, inactive, older, newer} {
		require.NoError(t, r.CreateDiscount(ctx, d))
	}

	d, err = r.ActiveDiscount(ctx, now)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "summer", d.Name)

	d, err = r.ActiveDiscount(ctx, now.Add(10*24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestUpsertProduct_BySlug(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "wrench")

	again := &models.Product{CategoryID: p.CategoryID, Slug: "wrench", Name: "Big wrench", Price: 42, IsActive: true}
	require.NoError(t, r.UpsertProduct(ctx, again))
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Big wrench", again.Name)

	all, err := r.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetProducts_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "a")
	b := seedProduct(t, r, "b")
	require.NoError(t, r.DB.Model(b).Update("is_featured", true).Error)
	hidden := seedProduct(t, r, "c")
	require.NoError(t, r.DB.Model(hidden).Update("is_active", false).Error)

	total, items, err := r.GetProducts(ctx, ProductFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	total, items, err = r.GetProducts(ctx, ProductFilter{FeaturedOnly: true}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "b", items[0].Slug)

	total, _, err = r.SearchProducts(ctx, "B", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
