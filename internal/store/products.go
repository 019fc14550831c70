package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/safar/minimarket/internal/models"
	"github.com/shopspring/decimal"
)

// Catalog holds the product collection. Insertion order is preserved for
// listing. All methods are safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	order    []string
	codes    map[string]string
	newID    IDGenerator
}

// NewCatalog returns an empty catalog. A nil newID uses "prod"-prefixed
// nanoids.
func NewCatalog(newID IDGenerator) *Catalog {
	if newID == nil {
		newID = mustPrefixedIDGenerator(ProductIDPrefix)
	}
	return &Catalog{
		products: make(map[string]*models.Product),
		codes:    make(map[string]string),
		newID:    newID,
	}
}

func (c *Catalog) List() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]models.Product, 0, len(c.order))
	for _, id := range c.order {
		products = append(products, *c.products[id])
	}
	return products
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Catalog) Get(id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[id]
	if !ok {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	p := *product
	return &p, nil
}

func (c *Catalog) Insert(in models.ProductInput) (*models.Product, error) {
	var missing []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, newValidationError("missing required fields", missing...)
	}
	if err := validateStockPrice(*in.Stock, *in.Price); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	code := strings.TrimSpace(in.Code)
	if code != "" {
		if _, taken := c.codes[code]; taken {
			return nil, &ConflictError{Resource: "product", Field: "code", Value: code}
		}
	}

	product := &models.Product{
		ID:       uniqueID(c.newID, c.has),
		Code:     code,
		Name:     strings.TrimSpace(*in.Name),
		Category: strings.TrimSpace(in.Category),
		Stock:    *in.Stock,
		Price:    *in.Price,
	}
	c.put(product)

	p := *product
	return &p, nil
}

// Update merges the present fields of patch over the stored product. The id
// never changes.
func (c *Catalog) Update(id string, patch models.ProductPatch) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.products[id]
	if !ok {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}

	merged := *existing
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newValidationError("must not be empty", "name")
		}
		merged.Name = name
	}
	if patch.Code != nil {
		merged.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Category != nil {
		merged.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Stock != nil {
		merged.Stock = *patch.Stock
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}

	if err := validateStockPrice(merged.Stock, merged.Price); err != nil {
		return nil, err
	}

	if merged.Code != existing.Code {
		if owner, taken := c.codes[merged.Code]; taken && merged.Code != "" && owner != id {
			return nil, &ConflictError{Resource: "product", Field: "code", Value: merged.Code}
		}
		delete(c.codes, existing.Code)
		if merged.Code != "" {
			c.codes[merged.Code] = id
		}
	}

	*existing = merged
	p := merged
	return &p, nil
}

func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	product, ok := c.products[id]
	if !ok {
		return &NotFoundError{Resource: "product", ID: id}
	}

	delete(c.products, id)
	if product.Code != "" {
		delete(c.codes, product.Code)
	}
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Load stores products with caller-assigned ids. It is used to seed the
// catalog at startup and rejects duplicate ids or codes.
func (c *Catalog) Load(products ...models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range products {
		if p.ID == "" {
			return newValidationError("seed product without id", "id")
		}
		if c.has(p.ID) {
			return &ConflictError{Resource: "product", Field: "id", Value: p.ID}
		}
		if p.Code != "" {
			if _, taken := c.codes[p.Code]; taken {
				return &ConflictError{Resource: "product", Field: "code", Value: p.Code}
			}
		}
		if err := validateStockPrice(p.Stock, p.Price); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		product := p
		c.put(&product)
	}
	return nil
}

// adjustStock decrements stock by a positive delta. The caller must hold the
// write lock.
func (c *Catalog) adjustStock(id string, delta int) error {
	if delta <= 0 {
		return newValidationError("stock adjustment must be positive", "quantity")
	}
	product, ok := c.products[id]
	if !ok {
		return &NotFoundError{Resource: "product", ID: id}
	}
	if product.Stock < delta {
		return &InsufficientStockError{ProductIDs: []string{id}}
	}
	product.Stock -= delta
	return nil
}

func (c *Catalog) has(id string) bool {
	_, ok := c.products[id]
	return ok
}

func (c *Catalog) put(p *models.Product) {
	c.products[p.ID] = p
	c.order = append(c.order, p.ID)
	if p.Code != "" {
		c.codes[p.Code] = p.ID
	}
}

func validateStockPrice(stock int, price decimal.Decimal) error {
	var invalid []string
	if stock < 0 {
		invalid = append(invalid, "stock")
	}
	if price.IsNegative() {
		invalid = append(invalid, "price")
	}
	if len(invalid) > 0 {
		return newValidationError("must be non-negative", invalid...)
	}
	return nil
}

func mustPrefixedIDGenerator(prefix string) IDGenerator {
	gen, err := NewPrefixedIDGenerator(prefix)
	if err != nil {
		panic(err)
	}
	return gen
}
