package game

import "github.com/google/uuid"

// IDGenerator mints opaque player and room identifiers. Injected so
// tests can pin ids.
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string { return uuid.NewString() }

// NewUUIDGenerator returns the production generator.
func NewUUIDGenerator() IDGenerator { return uuidGenerator{} }
