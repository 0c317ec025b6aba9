package apperror

import (
	"fmt"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidInputIsNotValid(t *testing.T) {
	err := InvalidInput("quantity_change", "quantity_nonzero")

	assert.True(t, errors.Is(err, errors.NotValid))
	assert.False(t, errors.Is(err, ErrInvariantViolation))
	assert.Equal(t, "invalid_input (quantity_change: quantity_nonzero)", err.Error())
}

func TestAddKeepsFieldsSorted(t *testing.T) {
	err := InvalidInput("stock_code", "stock_code_required").Add("name", "name_required")

	assert.Equal(t, "invalid_input (name: name_required, stock_code: stock_code_required)", err.Error())
}

func TestInvariantViolationSurvivesWrapping(t *testing.T) {
	var err error = InvariantViolation("quantity_change", "stock_negative", map[string]interface{}{"Result": -3})
	wrapped := fmt.Errorf("adjust: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInvariantViolation))

	ve, ok := AsValidation(wrapped)
	require.True(t, ok)
	assert.Equal(t, -3, ve.Args["Result"])
}

func TestAsValidationOnPlainError(t *testing.T) {
	_, ok := AsValidation(errors.New("boom"))
	assert.False(t, ok)
}
