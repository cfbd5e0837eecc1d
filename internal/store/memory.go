package store

import (
	"context"
	"sync"

	"github.com/Yishiba/animeko/internal/core"
)

var _ core.IdentityStore = (*InMemoryIdentityStore)(nil)

// InMemoryIdentityStore keeps identity links in process memory.
// Links are lost on restart, so it is only suitable for development and tests.
type InMemoryIdentityStore struct {
	mu    sync.RWMutex
	links map[linkKey]core.IdentityLink
}

type linkKey struct {
	provider string
	subject  string
}

func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		links: make(map[linkKey]core.IdentityLink),
	}
}

func (s *InMemoryIdentityStore) GetOrCreate(_ context.Context, link core.IdentityLink) (core.IdentityLink, bool, error) {
	if err := validateLink(link); err != nil {
		return core.IdentityLink{}, false, err
	}

	key := linkKey{provider: link.Provider, subject: link.Subject}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.links[key]; ok {
		return existing, false, nil
	}
	s.links[key] = link
	return link, true, nil
}

func (s *InMemoryIdentityStore) Lookup(_ context.Context, provider, subject string) (core.IdentityLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[linkKey{provider: provider, subject: subject}]
	if !ok {
		return core.IdentityLink{}, core.ErrLinkNotFound
	}
	return link, nil
}

func (s *InMemoryIdentityStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links), nil
}
