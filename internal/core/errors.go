package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the target row is absent or owned by someone else.
	ErrNotFound = errors.New("not found")

	// ErrReferenceNotFound means a referenced entity (category, account,
	// account group, parent category) is absent or not owned by the caller.
	ErrReferenceNotFound = errors.New("referenced entity not found")

	ErrCategoryNotFound     = &ReferenceError{Entity: EntityCategory}
	ErrAccountNotFound      = &ReferenceError{Entity: EntityAccount}
	ErrAccountGroupNotFound = &ReferenceError{Entity: EntityAccountGroup}

	// ErrValidation marks malformed input rejected before it reaches storage.
	ErrValidation = errors.New("validation failed")

	// ErrIntegrity marks stored data that contradicts itself, such as a
	// transaction whose category no longer resolves during enrichment.
	ErrIntegrity = errors.New("data integrity fault")

	// ErrConflict is returned when a delete is refused because other rows
	// still reference the target.
	ErrConflict = errors.New("entity is still referenced")

	ErrInvalidKind     = fmt.Errorf("%w: kind must be \"income\" or \"expense\"", ErrValidation)
	ErrUnknownKindCode = errors.New("unknown kind code")
)

const (
	EntityAccountGroup = "account group"
	EntityAccount      = "account"
	EntityCategory     = "category"
	EntityTransaction  = "transaction"
)

// ReferenceError reports which reference failed to resolve. It matches
// ErrReferenceNotFound and any ReferenceError for the same entity.
type ReferenceError struct {
	Entity string
	ID     int64
}

func (e *ReferenceError) Error() string {
	if e.ID == 0 {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	if target == ErrReferenceNotFound {
		return true
	}
	t, ok := target.(*ReferenceError)
	return ok && t.Entity == e.Entity
}

// MissingReference builds a ReferenceError for a specific id.
func MissingReference(entity string, id int64) error {
	return &ReferenceError{Entity: entity, ID: id}
}

// NotFound wraps ErrNotFound with the entity name and id.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// Invalid wraps ErrValidation with a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
