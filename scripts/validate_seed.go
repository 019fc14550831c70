package main

import (
	"log"
	"os"

	"github.com/safar/minimarket/internal/config"
	"github.com/safar/minimarket/internal/seed"
	"github.com/safar/minimarket/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	path := cfg.Seed.Path
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Printf("No seed file given, checking built-in seed data")
	}

	data, err := seed.Load(path)
	if err != nil {
		log.Fatalf("Load seed: %v", err)
	}

	catalog := store.NewCatalog(nil)
	customers := store.NewCustomerStore(nil)
	if err := data.Apply(catalog, customers); err != nil {
		log.Fatalf("Apply seed: %v", err)
	}

	outOfStock := 0
	for _, p := range catalog.List() {
		if p.Stock == 0 {
			outOfStock++
			log.Printf("Product %s (%s) has no stock", p.ID, p.Name)
		}
	}

	log.Printf("Seed OK: %d product(s), %d out of stock, %d customer(s)",
		catalog.Len(), outOfStock, len(customers.List()))
}
