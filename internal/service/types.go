package service

import (
	"context"
	"time"

	"github.com/Yishiba/animeko/internal/core"
)

type LoginRequest struct {
	// Provider is the configured name of the external identity provider.
	Provider string

	// Credential is the raw external credential, e.g. a Bangumi access token.
	Credential string
}

type LoginResult struct {
	// Token is the issued session token.
	Token *core.SessionToken

	// UserID is the internal identity the token was issued for.
	UserID core.UserID

	// NewUser is true if this login created the identity.
	NewUser bool

	// DisplayName as reported by the provider, if any.
	DisplayName string
}

// ProviderRegistry resolves provider names to verifiers.
type ProviderRegistry interface {
	Lookup(name string) (core.IdentityVerifier, error)
	// Timeout returns the provider specific timeout, or 0 to use the service default.
	Timeout(name string) time.Duration
	Names() []string
}

type IdentityResolver interface {
	ResolveLink(ctx context.Context, providerID string, subject *core.ExternalSubject) (core.IdentityLink, bool, error)
}

type TokenIssuer interface {
	Issue(userID core.UserID, provider string, ttl time.Duration) (*core.SessionToken, error)
}

type TokenVerifier interface {
	Verify(raw string) (*core.Claims, error)
}

type Config struct {
	// TTL of issued session tokens.
	TTL time.Duration

	// ProviderTimeout bounds each call to an external provider. Zero disables the bound.
	ProviderTimeout time.Duration
}
