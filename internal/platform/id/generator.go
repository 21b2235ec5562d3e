package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a UUIDv7 string. Ids created later sort after earlier ones.
func New() string {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v.String()
}

// Validate reports whether raw is a canonical UUID.
func Validate(raw string) error {
	if err := uuid.Validate(raw); err != nil {
		return fmt.Errorf("parse id %q: %w", raw, err)
	}
	return nil
}
