package core

import "context"

// IdentityVerifier validates credentials against an external identity provider.
// Implementations: Bangumi, OIDC, Static.
type IdentityVerifier interface {
	// Name returns the identifier of this provider (as used in config).
	Name() string

	// Verify takes a raw external credential, asks the provider whether it is valid
	// and returns the subject the provider asserts.
	// Rejections are reported as KindInvalidCredential, transport problems as KindProviderUnavailable.
	Verify(ctx context.Context, credential string) (*ExternalSubject, error)
}

// IdentityStore persists identity links.
// Implementations must guarantee that at most one link exists per (provider, subject).
type IdentityStore interface {
	// GetOrCreate atomically returns the existing link for (link.Provider, link.Subject),
	// or stores link if none exists. The boolean reports whether link was stored.
	GetOrCreate(ctx context.Context, link IdentityLink) (IdentityLink, bool, error)

	// Lookup returns the link for (provider, subject) or ErrLinkNotFound.
	Lookup(ctx context.Context, provider, subject string) (IdentityLink, error)

	// Count returns the number of stored links.
	Count(ctx context.Context) (int, error)
}
