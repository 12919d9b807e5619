package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ReferencePrefix is the human-visible prefix of transaction reference ids.
const ReferencePrefix = "TXN"

// ULIDGenerator generates ULID-based transaction reference ids.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new reference id of the form TXN<ULID>.
func (g *ULIDGenerator) Generate() string {
	return ReferencePrefix + ulid.Make().String()
}
