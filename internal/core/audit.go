package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "session.login")
	Action string `json:"action"`

	// Provider is the external identity provider that was requested
	Provider string `json:"provider,omitempty"`

	// Subject is the provider-scoped subject, once the credential was verified
	Subject string `json:"subject,omitempty"`

	// UserID is the resolved internal identity
	UserID UserID `json:"user_id,omitempty"`

	// NewUser is set when the login created the identity link
	NewUser bool `json:"new_user,omitempty"`

	// State is the final state of the attempt
	State LoginState `json:"state"`

	// FailedAt is the last state reached before the attempt failed
	FailedAt LoginState `json:"failed_at,omitempty"`

	Success   bool   `json:"success"`
	ErrorKind Kind   `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`

	// TokenFingerprint identifies the issued token without revealing it
	TokenFingerprint string    `json:"token_fingerprint,omitempty"`
	TokenExpiresAt   time.Time `json:"token_expires_at,omitzero"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
