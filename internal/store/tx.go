package store

import (
	"context"
	"fmt"

	"github.com/safar/minimarket/internal/models"
)

type stockChange struct {
	productID string
	quantity  int
}

// CatalogTx is the catalog as seen inside WithTransaction. Reads reflect
// staged decrements; nothing reaches the catalog until commit.
type CatalogTx struct {
	catalog *Catalog
	staged  []stockChange
	pending map[string]int
	after   []func()
}

func (tx *CatalogTx) Get(id string) (models.Product, bool) {
	product, ok := tx.catalog.products[id]
	if !ok {
		return models.Product{}, false
	}
	p := *product
	p.Stock -= tx.pending[id]
	return p, true
}

// DecrementStock stages a decrement after checking it against the stock left
// once every earlier staged change is applied.
func (tx *CatalogTx) DecrementStock(id string, quantity int) error {
	if quantity <= 0 {
		return newValidationError("quantity must be positive", "quantity")
	}
	product, ok := tx.Get(id)
	if !ok {
		return &NotFoundError{Resource: "product", ID: id}
	}
	if product.Stock < quantity {
		return &InsufficientStockError{ProductIDs: []string{id}}
	}
	tx.staged = append(tx.staged, stockChange{productID: id, quantity: quantity})
	tx.pending[id] += quantity
	return nil
}

// AfterCommit registers fn to run once the staged changes are applied, before
// the catalog lock is released. It does not run if the transaction fails.
func (tx *CatalogTx) AfterCommit(fn func()) {
	tx.after = append(tx.after, fn)
}

func (tx *CatalogTx) commit() error {
	for i, change := range tx.staged {
		if err := tx.catalog.adjustStock(change.productID, change.quantity); err != nil {
			for j := i - 1; j >= 0; j-- {
				undo := tx.staged[j]
				tx.catalog.products[undo.productID].Stock += undo.quantity
			}
			return fmt.Errorf("commit stock changes: %w", err)
		}
	}
	return nil
}

// WithTransaction runs fn while holding the catalog write lock. If fn returns
// an error the staged changes are discarded; otherwise they are applied
// together.
func (c *Catalog) WithTransaction(ctx context.Context, fn func(*CatalogTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx := &CatalogTx{catalog: c, pending: make(map[string]int)}
	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.commit(); err != nil {
		return err
	}
	for _, fn := range tx.after {
		fn()
	}
	return nil
}
