package store

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/safar/minimarket/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleOf(customerID string, items ...models.SaleItemRequest) models.SaleRequest {
	return models.SaleRequest{CustomerID: customerID, Items: items}
}

func line(productID string, quantity int) models.SaleItemRequest {
	return models.SaleItemRequest{ProductID: productID, Quantity: quantity}
}

func TestRegisterSale(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 5, "2.00")

	sale, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 3)))
	require.NoError(t, err)

	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, "c1", sale.CustomerID)
	assert.Equal(t, "2024-03-09", sale.Date.String())
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("6.00")), "total %s", sale.Total)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, models.SaleItem{
		ProductID: "p1",
		Name:      "Product p1",
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("2.00"),
	}, sale.Items[0])

	p1, err := s.catalog.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p1.Stock)

	recorded, err := s.ledger.Get(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, *sale, *recorded)
}

func TestRegisterSaleMultipleItems(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 50, "100")
	seedProduct(t, s.catalog, "p2", 30, "200")

	sale, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 5), line("p2", 3)))
	require.NoError(t, err)

	expected := decimal.NewFromInt(100).Mul(decimal.NewFromInt(5)).
		Add(decimal.NewFromInt(200).Mul(decimal.NewFromInt(3)))
	assert.True(t, expected.Equal(sale.Total))

	sum := decimal.Zero
	for _, item := range sale.Items {
		sum = sum.Add(item.Subtotal())
	}
	assert.True(t, sum.Equal(sale.Total))

	p1, _ := s.catalog.Get("p1")
	p2, _ := s.catalog.Get("p2")
	assert.Equal(t, 45, p1.Stock)
	assert.Equal(t, 27, p2.Stock)
}

func TestRegisterSaleInsufficientStock(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 1, "2.00")

	_, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 2)))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, []string{"p1"}, stockErr.ProductIDs)
	assert.Contains(t, err.Error(), "p1")

	p1, _ := s.catalog.Get("p1")
	assert.Equal(t, 1, p1.Stock)
	assert.Equal(t, 0, s.ledger.Len())
}

func TestRegisterSaleRejectionLeavesStoresUnchanged(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 10, "1.50")
	seedProduct(t, s.catalog, "p2", 0, "3.00")
	seedProduct(t, s.catalog, "p3", 2, "4.00")

	_, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 2)))
	require.NoError(t, err)

	catalogBefore := s.catalog.List()
	ledgerBefore := s.ledger.List()

	_, err = s.engine.RegisterSale(context.Background(), saleOf("c1",
		line("p1", 1),
		line("p2", 1),
		line("ghost", 1),
		line("p3", 5),
	))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, []string{"p2", "ghost", "p3"}, stockErr.ProductIDs)
	assert.Equal(t, ErrorClassInsufficientStock, ClassifyError(err))

	assert.Equal(t, catalogBefore, s.catalog.List())
	assert.Equal(t, ledgerBefore, s.ledger.List())
}

func TestRegisterSaleAggregatesDuplicateLines(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 5, "1.00")

	// Each line alone fits in stock; together they do not.
	_, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 3), line("p1", 3)))
	require.ErrorIs(t, err, ErrInsufficientStock)

	p1, _ := s.catalog.Get("p1")
	assert.Equal(t, 5, p1.Stock)

	sale, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 2), line("p1", 3)))
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(5)))

	p1, _ = s.catalog.Get("p1")
	assert.Equal(t, 0, p1.Stock)
}

func TestRegisterSaleRejectsOverflowingQuantities(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 5, "1.00")

	_, err := s.engine.RegisterSale(context.Background(),
		saleOf("c1", line("p1", math.MaxInt), line("p1", math.MaxInt), line("p1", 3)))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"items[1].quantity", "items[2].quantity"}, verr.Fields)

	p1, _ := s.catalog.Get("p1")
	assert.Equal(t, 5, p1.Stock)
	assert.Equal(t, 0, s.ledger.Len())
}

func TestRegisterSaleRequestShape(t *testing.T) {
	tests := []struct {
		name   string
		req    models.SaleRequest
		fields []string
	}{
		{"no items", saleOf("c1"), []string{"items"}},
		{"no customer", saleOf("", line("p1", 1)), []string{"customerId"}},
		{"unknown customer", saleOf("nobody", line("p1", 1)), []string{"customerId"}},
		{"zero quantity", saleOf("c1", line("p1", 0)), []string{"items[0].quantity"}},
		{"negative quantity", saleOf("c1", line("p1", 1), line("p1", -2)), []string{"items[1].quantity"}},
		{"empty product", saleOf("c1", line(" ", 1)), []string{"items[0].productId"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStores(t)
			seedProduct(t, s.catalog, "p1", 5, "1.00")

			_, err := s.engine.RegisterSale(context.Background(), tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)

			p1, _ := s.catalog.Get("p1")
			assert.Equal(t, 5, p1.Stock)
			assert.Equal(t, 0, s.ledger.Len())
		})
	}
}

func TestRegisterSaleSnapshotsSurviveProductEdits(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 5, "2.00")

	sale, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 1)))
	require.NoError(t, err)

	_, err = s.catalog.Update("p1", models.ProductPatch{
		Name:  ptr("Renamed"),
		Price: ptr(decimal.RequireFromString("9.99")),
	})
	require.NoError(t, err)
	require.NoError(t, s.catalog.Delete("p1"))

	recorded, err := s.ledger.Get(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product p1", recorded.Items[0].Name)
	assert.True(t, recorded.Items[0].UnitPrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, recorded.Total.Equal(decimal.RequireFromString("2.00")))
}

func TestConcurrentSaleRegistration(t *testing.T) {
	s := newTestStores(t)
	seedProduct(t, s.catalog, "p1", 20, "100")

	concurrency := 15
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.engine.RegisterSale(context.Background(), saleOf("c1", line("p1", 2)))
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	insufficientStockCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case ClassifyError(err) == ErrorClassInsufficientStock:
			insufficientStockCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 10, successCount)
	assert.Equal(t, 5, insufficientStockCount)
	assert.Equal(t, 10, s.ledger.Len())

	p1, err := s.catalog.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Stock)
}

func TestLedgerListByCustomer(t *testing.T) {
	s := newTestStores(t)
	require.NoError(t, s.customers.Load(models.Customer{ID: "c2", Name: "Beto", Email: "beto@example.com"}))
	seedProduct(t, s.catalog, "p1", 10, "1.00")

	for _, customerID := range []string{"c1", "c2", "c1"} {
		_, err := s.engine.RegisterSale(context.Background(), saleOf(customerID, line("p1", 1)))
		require.NoError(t, err)
	}

	assert.Len(t, s.ledger.List(), 3)
	assert.Len(t, s.ledger.ListByCustomer("c1"), 2)
	assert.Len(t, s.ledger.ListByCustomer("c2"), 1)
	assert.Empty(t, s.ledger.ListByCustomer("c3"))

	_, err := s.ledger.Get("missing")
	require.ErrorIs(t, err, ErrSaleNotFound)
}
