package store

import (
	"slices"
	"sync"

	"github.com/safar/minimarket/internal/models"
)

// Ledger is the append-only record of completed sales.
type Ledger struct {
	mu    sync.RWMutex
	sales []models.Sale
	index map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{index: make(map[string]int)}
}

// List returns every sale in creation order.
func (l *Ledger) List() []models.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]models.Sale, len(l.sales))
	for i, s := range l.sales {
		sales[i] = cloneSale(s)
	}
	return sales
}

func (l *Ledger) ListByCustomer(customerID string) []models.Sale {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sales []models.Sale
	for _, s := range l.sales {
		if s.CustomerID == customerID {
			sales = append(sales, cloneSale(s))
		}
	}
	return sales
}

func (l *Ledger) Get(id string) (*models.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return nil, &NotFoundError{Resource: "sale", ID: id}
	}
	s := cloneSale(l.sales[i])
	return &s, nil
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sales)
}

func (l *Ledger) append(sale models.Sale) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.index[sale.ID] = len(l.sales)
	l.sales = append(l.sales, cloneSale(sale))
}

func cloneSale(s models.Sale) models.Sale {
	s.Items = slices.Clone(s.Items)
	return s
}
