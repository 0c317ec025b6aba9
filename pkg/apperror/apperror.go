// Package apperror carries field-level validation failures on top of the
// juju/errors kinds used across the service.
//
// Messages are message IDs understood by pkg/i18n, so the transport layer can
// render them in the caller's language.
package apperror

import (
	"sort"
	"strings"

	"github.com/juju/errors"
)

// ErrInvariantViolation marks a request that is well formed but would break a
// domain invariant, such as driving stock below zero.
const ErrInvariantViolation = errors.ConstError("invariant violation")

// ValidationError is returned when a request is rejected before any write.
type ValidationError struct {
	Kind      error
	MessageID string
	// Fields maps request field names to message IDs.
	Fields map[string]string
	// Args holds template data for rendering the messages.
	Args map[string]interface{}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.MessageID
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.MessageID + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Add records another field failure on the same error.
func (e *ValidationError) Add(field, messageID string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = messageID
	return e
}

// InvalidInput builds a NotValid error for a single field.
func InvalidInput(field, messageID string) *ValidationError {
	return &ValidationError{
		Kind:      errors.NotValid,
		MessageID: "invalid_input",
		Fields:    map[string]string{field: messageID},
	}
}

// InvariantViolation builds an invariant error for a single field.
func InvariantViolation(field, messageID string, args map[string]interface{}) *ValidationError {
	return &ValidationError{
		Kind:      ErrInvariantViolation,
		MessageID: messageID,
		Fields:    map[string]string{field: messageID},
		Args:      args,
	}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
