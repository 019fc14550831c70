package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID       string          `json:"id"`
	Code     string          `json:"code,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	Price    decimal.Decimal `json:"price"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Sale struct {
	ID         string          `json:"id"`
	Date       Date            `json:"date"`
	CustomerID string          `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	Items      []SaleItem      `json:"items"`
}

// SaleItem is a line item as stored on a completed sale. Name and UnitPrice
// are copies taken when the sale was registered.
type SaleItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns UnitPrice × Quantity.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ProductInput is an insert candidate. Pointer fields distinguish an absent
// value from a zero value.
type ProductInput struct {
	Code     string           `json:"code"`
	Name     *string          `json:"name"`
	Category string           `json:"category"`
	Stock    *int             `json:"stock"`
	Price    *decimal.Decimal `json:"price"`
}

// ProductPatch carries the fields to overwrite on update. Nil means "keep".
type ProductPatch struct {
	Code     *string          `json:"code"`
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Stock    *int             `json:"stock"`
	Price    *decimal.Decimal `json:"price"`
}

// MissingForReplace lists the fields a full replacement (PUT) must carry.
func (p ProductPatch) MissingForReplace() []string {
	var missing []string
	if p.Name == nil {
		missing = append(missing, "name")
	}
	if p.Stock == nil {
		missing = append(missing, "stock")
	}
	if p.Price == nil {
		missing = append(missing, "price")
	}
	return missing
}

type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type SaleRequest struct {
	CustomerID string            `json:"customerId"`
	Items      []SaleItemRequest `json:"items"`
}

type SaleItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

const DateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
