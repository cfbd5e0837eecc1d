package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/core"
)

// Resolver maps external subjects to internal identities, creating them on first sight.
type Resolver struct {
	store core.IdentityStore
	// cache holds resolved links. Links never change, so entries never go stale.
	cache *lru.Cache[cacheKey, core.IdentityLink]
	now   func() time.Time
}

type cacheKey struct {
	provider string
	subject  string
}

// NewResolver creates a resolver over store. A cacheSize <= 0 disables caching.
func NewResolver(store core.IdentityStore, cacheSize int) (*Resolver, error) {
	r := &Resolver{
		store: store,
		now:   time.Now,
	}
	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, core.IdentityLink](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating identity cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Resolve returns the internal identity for subject under providerID.
func (r *Resolver) Resolve(ctx context.Context, providerID string, subject *core.ExternalSubject) (core.UserID, error) {
	link, _, err := r.ResolveLink(ctx, providerID, subject)
	if err != nil {
		return "", err
	}
	return link.UserID, nil
}

// ResolveLink is like Resolve but also returns the full link and whether this call created it.
func (r *Resolver) ResolveLink(ctx context.Context, providerID string, subject *core.ExternalSubject) (core.IdentityLink, bool, error) {
	if providerID == "" {
		return core.IdentityLink{}, false, core.NewError(core.KindUnknownProvider, "cannot resolve identity without provider")
	}
	if subject == nil || subject.ID == "" {
		return core.IdentityLink{}, false, core.NewError(core.KindInvalidCredential, "provider asserted no subject id")
	}

	key := cacheKey{provider: providerID, subject: subject.ID}
	if r.cache != nil {
		if link, ok := r.cache.Get(key); ok {
			return link, false, nil
		}
	}

	candidate := core.IdentityLink{
		Provider:    providerID,
		Subject:     subject.ID,
		UserID:      core.UserID(uuid.NewString()),
		DisplayName: subject.DisplayName,
		CreatedAt:   r.now().UTC(),
	}

	link, created, err := r.store.GetOrCreate(ctx, candidate)
	if err != nil {
		return core.IdentityLink{}, false, core.WrapError(core.KindStorageError, err,
			"resolving identity for %s/%s", providerID, subject.ID)
	}

	if created {
		log.Ctx(ctx).Info().
			Str("provider", providerID).
			Str("user_id", link.UserID.String()).
			Msg("created new identity")
	}

	if r.cache != nil {
		r.cache.Add(key, link)
	}
	return link, created, nil
}
