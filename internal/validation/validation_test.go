package validation

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("checkout: %w", New("email", "required"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(io.EOF))

	ve, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "email", ve.Field)
	assert.Equal(t, "email: required", ve.Error())
	assert.Equal(t, "terms", New("", "terms").Error())
	assert.False(t, errors.Is(err, io.EOF))
}
