package store

import (
	"net/mail"
	"strings"
	"sync"

	"github.com/safar/minimarket/internal/models"
)

// CustomerStore holds the customer collection in insertion order.
type CustomerStore struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	order     []string
	newID     IDGenerator
}

func NewCustomerStore(newID IDGenerator) *CustomerStore {
	if newID == nil {
		newID = mustPrefixedIDGenerator(CustomerIDPrefix)
	}
	return &CustomerStore{
		customers: make(map[string]*models.Customer),
		newID:     newID,
	}
}

func (s *CustomerStore) List() []models.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]models.Customer, 0, len(s.order))
	for _, id := range s.order {
		customers = append(customers, *s.customers[id])
	}
	return customers
}

func (s *CustomerStore) Get(id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, &NotFoundError{Resource: "customer", ID: id}
	}
	c := *customer
	return &c, nil
}

func (s *CustomerStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.customers[id]
	return ok
}

func (s *CustomerStore) Insert(in models.CustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, newValidationError("missing required fields", missing...)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newValidationError("malformed email address", "email")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer := &models.Customer{
		ID: uniqueID(s.newID, func(id string) bool {
			_, ok := s.customers[id]
			return ok
		}),
		Name:  name,
		Email: email,
		Phone: strings.TrimSpace(in.Phone),
	}
	s.customers[customer.ID] = customer
	s.order = append(s.order, customer.ID)

	c := *customer
	return &c, nil
}

// Load stores customers with caller-assigned ids for seeding.
func (s *CustomerStore) Load(customers ...models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range customers {
		if c.ID == "" {
			return newValidationError("seed customer without id", "id")
		}
		if _, ok := s.customers[c.ID]; ok {
			return &ConflictError{Resource: "customer", Field: "id", Value: c.ID}
		}
		customer := c
		s.customers[c.ID] = &customer
		s.order = append(s.order, c.ID)
	}
	return nil
}
