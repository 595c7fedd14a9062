package crypto

import (
	"fmt"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random (v4) identifiers for credential records.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}
