package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techhub/internal/domain"
	"techhub/internal/repos"
	"techhub/internal/services"
)

func memdbAll(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	pr := repos.NewProductRepo(db)
	for i, name := range []string{"Nova Phone", "Apex Book", "Pulse Buds"} {
		require.NoError(t, pr.Insert(domain.Product{
			ID: int64(i + 1), Name: name, Price: decimal.NewFromInt(int64(100 * (i + 1))),
			Category: domain.CategoryGaming,
		}))
	}
	return db
}

func TestOrderFlow_AddCartCheckout(t *testing.T) {
	db := memdbAll(t)

	cartRepo := repos.NewCartRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartRepo, orderRepo, 0, 1)

	sid := "test-session"
	cv, err := cartSvc.Add(sid, 2, 2)
	require.NoError(t, err)
	cv, err = cartSvc.Add(sid, 1, 1)
	require.NoError(t, err)
	require.Len(t, cv.Items, 2)
	assert.Equal(t, 3, cv.TotalItems)
	assert.True(t, cv.TotalPrice.Equal(decimal.NewFromInt(500)), cv.TotalPrice.String())

	p, err := orderSvc.Place(sid, "key-1", "cash", "standard")
	require.NoError(t, err)
	require.NotEmpty(t, p.OrderID)
	assert.False(t, p.Replay)

	o, items, err := orderRepo.Get(p.OrderID)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(500)))
	assert.Len(t, items, 2)

	after, err := cartSvc.View(sid)
	require.NoError(t, err)
	assert.True(t, after.IsEmpty())

	// Same key again: same order, nothing new recorded.
	again, err := orderSvc.Place(sid, "key-1", "cash", "standard")
	require.NoError(t, err)
	assert.True(t, again.Replay)
	assert.Equal(t, p.OrderID, again.OrderID)
	n, err := orderRepo.CountBySession(sid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOrderRejectionKeepsCart(t *testing.T) {
	db := memdbAll(t)
	cartRepo := repos.NewCartRepo(db)
	cartSvc := services.NewCartService(cartRepo, repos.NewProductRepo(db))
	orderSvc := services.NewOrderService(cartRepo, repos.NewOrderRepo(db), 1, 1)

	_, err := cartSvc.Add("s", 1, 1)
	require.NoError(t, err)

	_, err = orderSvc.Place("s", "k", "card", "express")
	require.ErrorIs(t, err, services.ErrOrderRejected)

	cv, err := cartSvc.View("s")
	require.NoError(t, err)
	assert.Equal(t, 1, cv.TotalItems)
}

func TestCartServiceValidation(t *testing.T) {
	db := memdbAll(t)
	cartSvc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	_, err := cartSvc.Add("s", 42, 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = cartSvc.Add("s", 1, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	orderSvc := services.NewOrderService(repos.NewCartRepo(db), repos.NewOrderRepo(db), 0, 1)
	_, err = orderSvc.Place("s", "", "cash", "standard")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCatalogSearchPaging(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewCatalogService(repos.NewProductRepo(db))

	page, err := svc.Search("", "", 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 3, page.Total)
	require.NotNil(t, page.HasMore)
	assert.True(t, *page.HasMore)

	last, err := svc.Search("", "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, last.Products, 1)
	assert.False(t, *last.HasMore)
}
