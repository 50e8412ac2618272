package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist.
// It is gorm's own sentinel so errors.Is matches either name.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrConflict is returned when a write violates a uniqueness rule
var ErrConflict = errors.New("duplicate record")

// ValidationError reports input the store refuses to persist
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// translateError maps driver-level uniqueness failures onto ErrConflict
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || isPQUniqueViolation(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func propertyNotFound(id uint) error {
	return fmt.Errorf("property %d: %w", id, ErrNotFound)
}
