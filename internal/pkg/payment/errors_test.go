package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindExtraction(t *testing.T) {
	err := NewError(ErrNotFound, "no transaction with reference %q", "pf-x")
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.True(t, IsKind(err, ErrNotFound))
	assert.False(t, IsKind(err, ErrConflict))
	assert.Contains(t, err.Error(), "pf-x")
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	inner := NewError(ErrConflict, "transaction moved")
	wrapped := fmt.Errorf("confirm failed: %w", inner)

	assert.Equal(t, ErrConflict, KindOf(wrapped))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrTransport, cause, "request POST /transaction/initialize")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrTransport, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
