// Package utils provides shared helpers used across the application.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID creates a new UUID v4 string for use as a rider identifier.
// Random UUIDs need no coordination between concurrent registrations and the
// collision probability is negligible (1 in 2^122).
func GenerateID() string {
	return uuid.New().String()
}
