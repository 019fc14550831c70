package store

import (
	"testing"
	"time"

	"github.com/safar/minimarket/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 9, 15, 30, 0, 0, time.UTC)

type testStores struct {
	catalog   *Catalog
	customers *CustomerStore
	ledger    *Ledger
	engine    *SaleEngine
}

func newTestStores(t *testing.T) testStores {
	t.Helper()

	s := testStores{
		catalog:   NewCatalog(nil),
		customers: NewCustomerStore(nil),
		ledger:    NewLedger(),
	}
	s.engine = NewSaleEngine(s.catalog, s.customers, s.ledger,
		WithClock(func() time.Time { return fixedNow }))

	require.NoError(t, s.customers.Load(models.Customer{ID: "c1", Name: "Ana", Email: "ana@example.com"}))
	return s
}

func seedProduct(t *testing.T, c *Catalog, id string, stock int, price string) {
	t.Helper()
	require.NoError(t, c.Load(models.Product{
		ID:    id,
		Name:  "Product " + id,
		Stock: stock,
		Price: decimal.RequireFromString(price),
	}))
}

func ptr[T any](v T) *T {
	return &v
}
