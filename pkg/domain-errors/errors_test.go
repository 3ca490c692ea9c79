package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "consent not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped cause keeps outer code", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to load consent")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("walks nested domain errors", func(t *testing.T) {
		inner := New(CodeTimeout, "consent lookup timed out")
		outer := Wrap(inner, CodeInternal, "decision failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeTimeout))
	})

	t.Run("nil and non-domain errors", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeUnauthorized, "access denied"))
		assert.True(t, HasCode(err, CodeUnauthorized))
	})
}

func TestMetadata(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		err := Add(New(CodeUnauthorized, "access denied"), "reason", "no_consent")
		reason, ok := Load(err, "reason")
		require.True(t, ok)
		assert.Equal(t, "no_consent", reason)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := Load(New(CodeUnauthorized, "access denied"), "reason")
		assert.False(t, ok)
	})

	t.Run("non-domain error unchanged", func(t *testing.T) {
		plain := errors.New("plain")
		assert.Equal(t, plain, Add(plain, "k", "v"))
	})

	t.Run("reads through wrapping", func(t *testing.T) {
		inner := Add(New(CodeUnauthorized, "access denied"), "reason", "wrong_actor")
		outer := fmt.Errorf("gateway: %w", inner)
		reason, ok := Load(outer, "reason")
		require.True(t, ok)
		assert.Equal(t, "wrong_actor", reason)
	})
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: consent not found", New(CodeNotFound, "consent not found").Error())
	wrapped := Wrap(errors.New("boom"), CodeInternal, "failed")
	assert.Equal(t, "internal: failed: boom", wrapped.Error())
}
