package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/safar/minimarket/internal/models"
	"github.com/shopspring/decimal"
)

// SaleEngine registers sales. It is the only writer of the ledger and the
// only caller that decrements catalog stock.
type SaleEngine struct {
	catalog   *Catalog
	customers *CustomerStore
	ledger    *Ledger
	now       func() time.Time
	newID     IDGenerator
}

type EngineOption func(*SaleEngine)

// WithClock overrides the source of sale dates.
func WithClock(now func() time.Time) EngineOption {
	return func(e *SaleEngine) { e.now = now }
}

func WithSaleIDGenerator(gen IDGenerator) EngineOption {
	return func(e *SaleEngine) { e.newID = gen }
}

func NewSaleEngine(catalog *Catalog, customers *CustomerStore, ledger *Ledger, opts ...EngineOption) *SaleEngine {
	e := &SaleEngine{
		catalog:   catalog,
		customers: customers,
		ledger:    ledger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     newSaleID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type demand struct {
	productID string
	quantity  int
}

// RegisterSale validates every line of req against the catalog and, only if
// all of them pass, decrements stock and records the sale. Quantities for the
// same product are summed before the stock check.
func (e *SaleEngine) RegisterSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error) {
	demands, err := e.validateRequest(req)
	if err != nil {
		return nil, err
	}

	var sale models.Sale

	err = e.catalog.WithTransaction(ctx, func(tx *CatalogTx) error {
		var rejected []string
		snapshots := make(map[string]models.Product, len(demands))

		for _, d := range demands {
			product, ok := tx.Get(d.productID)
			if !ok || product.Stock < d.quantity {
				rejected = append(rejected, d.productID)
				continue
			}
			snapshots[d.productID] = product
		}

		if len(rejected) > 0 {
			return &InsufficientStockError{ProductIDs: rejected}
		}

		for _, d := range demands {
			if err := tx.DecrementStock(d.productID, d.quantity); err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		items := make([]models.SaleItem, 0, len(req.Items))
		total := decimal.Zero
		for _, line := range req.Items {
			product := snapshots[strings.TrimSpace(line.ProductID)]
			item := models.SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		sale = models.Sale{
			ID:         e.newID(),
			Date:       models.NewDate(e.now()),
			CustomerID: strings.TrimSpace(req.CustomerID),
			Total:      total,
			Items:      items,
		}
		tx.AfterCommit(func() { e.ledger.append(sale) })
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &sale, nil
}

// validateRequest checks the request shape and customer reference and
// aggregates quantities per product in first-appearance order.
func (e *SaleEngine) validateRequest(req models.SaleRequest) ([]demand, error) {
	if len(req.Items) == 0 {
		return nil, newValidationError("sale must contain at least one item", "items")
	}

	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return nil, newValidationError("missing required fields", "customerId")
	}

	var (
		demands []demand
		index   = make(map[string]int)
		invalid []string
	)
	for i, line := range req.Items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			invalid = append(invalid, fmt.Sprintf("items[%d].productId", i))
			continue
		}
		if line.Quantity <= 0 {
			invalid = append(invalid, fmt.Sprintf("items[%d].quantity", i))
			continue
		}
		if j, seen := index[productID]; seen {
			if line.Quantity > math.MaxInt-demands[j].quantity {
				invalid = append(invalid, fmt.Sprintf("items[%d].quantity", i))
				continue
			}
			demands[j].quantity += line.Quantity
			continue
		}
		index[productID] = len(demands)
		demands = append(demands, demand{productID: productID, quantity: line.Quantity})
	}
	if len(invalid) > 0 {
		return nil, newValidationError("invalid line items", invalid...)
	}

	if !e.customers.Exists(customerID) {
		return nil, newValidationError("unknown customer", "customerId")
	}

	return demands, nil
}
