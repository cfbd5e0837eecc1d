package core

import "time"

// UserID is the stable internal identity of a user.
// It is opaque to clients and never changes once assigned.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// ExternalSubject is the identity asserted by an external identity provider
// after it accepted a credential.
type ExternalSubject struct {
	// Provider is the name of the provider (as used in config) that verified this subject.
	Provider string `json:"provider"`

	// ID is the provider-scoped subject identifier (e.g., the Bangumi user id or OIDC sub).
	ID string `json:"id"`

	// DisplayName is a human-readable name, if the provider returned one.
	DisplayName string `json:"display_name,omitempty"`

	// Attributes are additional claims returned by the provider.
	// They are informational and never used for identity resolution.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// IdentityLink binds a (provider, subject) pair to an internal user.
// Once created, a link is never modified or removed.
type IdentityLink struct {
	Provider    string    `json:"provider"`
	Subject     string    `json:"subject"`
	UserID      UserID    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Claims is the payload carried by a session token.
type Claims struct {
	// UserID is the internal identity the token was issued for.
	UserID UserID `json:"user_id"`

	// Provider is the external identity provider used at login, if known.
	Provider string `json:"provider,omitempty"`

	Issuer    string    `json:"issuer"`
	Audience  []string  `json:"audience"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// TokenID is unique per issued token.
	TokenID string `json:"token_id"`
}

// SessionToken is a signed bearer credential issued by this service.
type SessionToken struct {
	// Value is the encoded token presented by clients.
	Value string `json:"value"`

	// Claims are the claims encoded in Value.
	Claims Claims `json:"claims"`
}

// LoginState is the furthest step a login attempt reached.
type LoginState string

const (
	LoginReceived           LoginState = "received"
	LoginCredentialVerified LoginState = "credential_verified"
	LoginIdentityResolved   LoginState = "identity_resolved"
	LoginTokenIssued        LoginState = "token_issued"
	LoginFailed             LoginState = "failed"
)

type Fingerprinter func(token string) string
