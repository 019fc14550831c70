package store

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 8

	ProductIDPrefix  = "prod"
	CustomerIDPrefix = "cust"
)

// IDGenerator returns a fresh identifier on every call.
type IDGenerator func() string

// NewPrefixedIDGenerator returns ids like "prod3k9x0a1z".
func NewPrefixedIDGenerator(prefix string) (IDGenerator, error) {
	gen, err := nanoid.CustomASCII(idAlphabet, idLength)
	if err != nil {
		return nil, fmt.Errorf("create id generator: %w", err)
	}
	return func() string { return prefix + gen() }, nil
}

func newSaleID() string {
	return uuid.NewString()
}

// uniqueID draws from gen until it returns an id not already taken.
func uniqueID(gen IDGenerator, taken func(string) bool) string {
	for {
		id := gen()
		if !taken(id) {
			return id
		}
	}
}
