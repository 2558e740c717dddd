package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "project path not found")

	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, "project path not found", err.Message())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "[NOT_FOUND] project path not found", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "bad depth %d", 42)
	assert.Equal(t, "[INVALID_INPUT] bad depth 42", err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("preserves cause chain", func(t *testing.T) {
		cause := fs.ErrPermission
		err := Wrap(cause, CodeIO, "failed to read project directory")

		require.NotNil(t, err)
		assert.Equal(t, CodeIO, err.Code())
		assert.True(t, stderrors.Is(err, fs.ErrPermission))
		assert.Equal(t, "[IO_ERROR] failed to read project directory: permission denied", err.Error())
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeIO, "ignored"))
		assert.Nil(t, Wrapf(nil, CodeIO, "ignored %d", 1))
	})

	t.Run("preserves classification of wrapped platform error", func(t *testing.T) {
		inner := New(CodeCacheFailed, "disk full")
		outer := Wrap(inner, CodeInternal, "persist failed")

		// CodeInternal defaults to permanent, but the retryable inner
		// classification wins.
		assert.Equal(t, ClassificationRetryable, outer.Classification())
	})
}

func TestGetCode(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, GetCode(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	})

	t.Run("platform error", func(t *testing.T) {
		assert.Equal(t, CodeTimeout, GetCode(New(CodeTimeout, "deadline")))
	})

	t.Run("wrapped through fmt.Errorf", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeIO, "read failed"))
		assert.Equal(t, CodeIO, GetCode(err))
		assert.True(t, IsCode(err, CodeIO))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeTimeout, "deadline")))
	assert.True(t, IsRetryable(New(CodeCacheFailed, "disk full")))
	assert.False(t, IsRetryable(New(CodeNotFound, "missing")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("context: %w", New(CodeInvalidConfig, "bad yaml"))

	var platformErr PlatformError
	require.True(t, As(err, &platformErr))
	assert.Equal(t, CodeInvalidConfig, platformErr.Code())
}
