package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the session subsystem.
type Kind string

const (
	// KindInvalidCredential means the external provider rejected the credential.
	KindInvalidCredential Kind = "invalid_credential"
	// KindProviderUnavailable means the provider could not be reached or did not answer in time.
	KindProviderUnavailable Kind = "provider_unavailable"
	// KindUnknownProvider means the requested provider is not configured.
	KindUnknownProvider Kind = "unknown_provider"
	// KindStorageError means the identity store failed.
	KindStorageError Kind = "storage_error"

	KindBadSignature Kind = "bad_signature"
	KindBadIssuer    Kind = "bad_issuer"
	KindBadAudience  Kind = "bad_audience"
	KindExpired      Kind = "expired"
	KindNotYetValid  Kind = "not_yet_valid"
	KindMalformed    Kind = "malformed"

	// KindSigningError means key material is missing or unusable.
	KindSigningError Kind = "signing_error"
)

// Retryable reports whether the same request may succeed when repeated later.
func (k Kind) Retryable() bool {
	return k == KindProviderUnavailable
}

// IsTokenRejection reports whether k is one of the session token verification failures.
func (k Kind) IsTokenRejection() bool {
	switch k {
	case KindBadSignature, KindBadIssuer, KindBadAudience, KindExpired, KindNotYetValid, KindMalformed:
		return true
	default:
		return false
	}
}

// Error is the typed error returned by all components of the session subsystem.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidCredential   = &Error{Kind: KindInvalidCredential}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
	ErrUnknownProvider     = &Error{Kind: KindUnknownProvider}
	ErrStorage             = &Error{Kind: KindStorageError}
	ErrBadSignature        = &Error{Kind: KindBadSignature}
	ErrBadIssuer           = &Error{Kind: KindBadIssuer}
	ErrBadAudience         = &Error{Kind: KindBadAudience}
	ErrExpired             = &Error{Kind: KindExpired}
	ErrNotYetValid         = &Error{Kind: KindNotYetValid}
	ErrMalformed           = &Error{Kind: KindMalformed}
	ErrSigning             = &Error{Kind: KindSigningError}
)

// ErrLinkNotFound is returned by IdentityStore.Lookup.
var ErrLinkNotFound = errors.New("identity link not found")

// NewError creates a typed error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a typed error with the given cause.
func WrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// EnsureKind returns err unchanged if it already carries a kind,
// otherwise wraps it with the fallback kind.
func EnsureKind(err error, fallback Kind, msg string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return &Error{Kind: fallback, Message: msg, Cause: err}
}
