// Package seed loads the startup contents of the in-memory stores.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/safar/minimarket/internal/models"
	"github.com/safar/minimarket/internal/store"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

type File struct {
	Products  []Product  `yaml:"products"`
	Customers []Customer `yaml:"customers"`
}

type Product struct {
	ID       string `yaml:"id"`
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Stock    int    `yaml:"stock"`
	Price    string `yaml:"price"`
}

type Customer struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// Default returns the built-in seed data.
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// Load reads the seed file at path, or the built-in data when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML seed data, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

func (f *File) ProductModels() ([]models.Product, error) {
	products := make([]models.Product, 0, len(f.Products))
	for _, p := range f.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid price %q: %w", p.ID, p.Price, err)
		}
		products = append(products, models.Product{
			ID:       p.ID,
			Code:     p.Code,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.Stock,
			Price:    price,
		})
	}
	return products, nil
}

func (f *File) CustomerModels() []models.Customer {
	customers := make([]models.Customer, 0, len(f.Customers))
	for _, c := range f.Customers {
		customers = append(customers, models.Customer(c))
	}
	return customers
}

// Apply loads the seed data into empty stores.
func (f *File) Apply(catalog *store.Catalog, customers *store.CustomerStore) error {
	products, err := f.ProductModels()
	if err != nil {
		return err
	}
	if err := catalog.Load(products...); err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	if err := customers.Load(f.CustomerModels()...); err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	return nil
}
