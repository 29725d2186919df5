package inventory

import (
	"errors"
	"fmt"

	"github.com/lmoreira/acervo/internal/model"
)

// ErrItemNotFound is returned when an operation references an unknown item.
var ErrItemNotFound = errors.New("item not found")

// ValidationError reports a missing or blank required field. The
// operation performs no mutation and no persistence write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PreconditionError reports an operation invoked against an item in the
// wrong status, e.g. withdrawing an already-loaned item. Callers are
// expected to have filtered by status, so this signals a stale view.
type PreconditionError struct {
	Op     string
	ItemID string
	Status model.ItemStatus
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: item %s has status %q", e.Op, e.ItemID, e.Status)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
