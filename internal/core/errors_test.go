package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := NewError(KindExpired, "token expired at %d", 42)
	wrapped := fmt.Errorf("authenticate: %w", err)

	assert.ErrorIs(t, wrapped, ErrExpired)
	assert.NotErrorIs(t, wrapped, ErrBadSignature)
	assert.Equal(t, KindExpired, KindOf(wrapped))
	assert.Equal(t, "token expired at 42", err.Error())
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(KindProviderUnavailable, cause, "bangumi")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, "bangumi: connection refused", err.Error())
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestEnsureKind(t *testing.T) {
	typed := NewError(KindInvalidCredential, "rejected")
	assert.Same(t, typed, EnsureKind(typed, KindStorageError, "ignored"))

	plain := errors.New("disk full")
	got := EnsureKind(plain, KindStorageError, "store")
	assert.ErrorIs(t, got, ErrStorage)
	assert.ErrorIs(t, got, plain)

	assert.NoError(t, EnsureKind(nil, KindStorageError, "store"))
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
		rejection bool
	}{
		{KindInvalidCredential, false, false},
		{KindProviderUnavailable, true, false},
		{KindUnknownProvider, false, false},
		{KindStorageError, false, false},
		{KindBadSignature, false, true},
		{KindBadIssuer, false, true},
		{KindBadAudience, false, true},
		{KindExpired, false, true},
		{KindNotYetValid, false, true},
		{KindMalformed, false, true},
		{KindSigningError, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
			assert.Equal(t, tt.rejection, tt.kind.IsTokenRejection())
		})
	}
}
