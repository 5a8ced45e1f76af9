package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewStorageError("failed to open file", errors.New("permission denied"))
	assert.Equal(t, "[STORAGE] failed to open file: permission denied", err.Error())

	bare := NewAppValidationError("bad input")
	assert.Equal(t, "[VALIDATION] bad input", bare.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("write failed", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestIsType(t *testing.T) {
	err := NewColumnNotFoundError("region")
	assert.True(t, IsType(err, ErrTypeColumnNotFound))
	assert.False(t, IsType(err, ErrTypeStorage))

	wrapped := fmt.Errorf("pipeline failed: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeColumnNotFound), "IsType must see through wrapping")

	assert.False(t, IsType(errors.New("plain"), ErrTypeStorage))
	assert.False(t, IsType(nil, ErrTypeStorage))
}

func TestWithContext(t *testing.T) {
	err := NewDuplicateKeyError("dim_customer", int64(7))
	require.NotNil(t, err.Context)
	assert.Equal(t, "dim_customer", err.Context["table"])
	assert.Equal(t, int64(7), err.Context["key"])
}
