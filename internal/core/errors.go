package core

import (
	"errors"
	"fmt"
)

// ValidationError reports a field that fails an entity invariant. Nothing is
// applied when a mutation returns one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// DateMismatchError is returned when a standalone transaction is dated
// outside the selected month.
type DateMismatchError struct {
	Date     Date
	Selected Month
}

func (e *DateMismatchError) Error() string {
	return fmt.Sprintf("transaction date %s does not match the selected month %s", e.Date, e.Selected)
}

// NotFoundError reports an update against an unknown id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

var (
	ErrInvalidMonth     = &ValidationError{Field: "month", Message: "invalid month"}
	ErrInvalidAmount    = &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	ErrEmptyDescription = &ValidationError{Field: "description", Message: "description is required"}
	ErrEmptyPayer       = &ValidationError{Field: "payer", Message: "payer is required"}
	ErrEmptyCategory    = &ValidationError{Field: "category", Message: "category is required"}
	ErrMissingCard      = &ValidationError{Field: "card_id", Message: "credit transactions need a card"}
)

// IsValidation reports whether err is a validation failure of any kind.
func IsValidation(err error) bool {
	var ve *ValidationError
	var de *DateMismatchError
	return errors.As(err, &ve) || errors.As(err, &de)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
