package kernel

import (
	"github.com/google/uuid"

	"fulfillment/internal/pkg/errs"
)

// NewUUID generates a new random identifier.
func NewUUID() uuid.UUID {
	return uuid.New()
}

// UUIDFromString parses an identifier from its string form.
func UUIDFromString(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errs.NewValueIsInvalidErrorWithCause("uuid", err)
	}
	return id, nil
}
