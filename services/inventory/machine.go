package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinNameLength is the minimum machine name length after trimming whitespace.
const MinNameLength = 2

// ErrInvalidName is returned when a machine name is shorter than
// MinNameLength after trimming.
var ErrInvalidName = errors.New("machine name must be at least 2 characters")

// Machine models one inventory record.
type Machine struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewMachine constructs a machine with a fresh id and current timestamp.
func NewMachine(name string, status Status) Machine {
	return Machine{
		ID:          uuid.New(),
		Name:        name,
		Status:      status,
		LastUpdated: time.Now().UTC(),
	}
}

// ValidateName reports whether name is acceptable for a machine record.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < MinNameLength {
		return ErrInvalidName
	}
	return nil
}
