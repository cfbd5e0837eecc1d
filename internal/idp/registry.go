package idp

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

type entry struct {
	verifier core.IdentityVerifier
	timeout  time.Duration
}

// Registry holds the configured identity providers by name.
type Registry struct {
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds v under v.Name(). A zero timeout means the caller's default applies.
func (r *Registry) Register(v core.IdentityVerifier, timeout time.Duration) error {
	if _, ok := r.entries[v.Name()]; ok {
		return fmt.Errorf("provider '%s' registered twice", v.Name())
	}
	r.entries[v.Name()] = entry{verifier: v, timeout: timeout}
	return nil
}

func (r *Registry) Get(name string) (core.IdentityVerifier, bool) {
	e, ok := r.entries[name]
	return e.verifier, ok
}

// Lookup is like Get but returns a KindUnknownProvider error.
func (r *Registry) Lookup(name string) (core.IdentityVerifier, error) {
	v, ok := r.Get(name)
	if !ok {
		return nil, core.NewError(core.KindUnknownProvider, "provider '%s' is not configured", name)
	}
	return v, nil
}

// Timeout returns the provider specific timeout, or 0 if none is configured.
func (r *Registry) Timeout(name string) time.Duration {
	return r.entries[name].timeout
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func BuildRegistry(ctx context.Context, cfgs []config.ProviderConfig) (*Registry, error) {
	registry := NewRegistry()
	for _, cfg := range cfgs {
		var (
			v   core.IdentityVerifier
			err error
		)
		switch cfg.Type {
		case TypeStatic:
			v, err = NewStaticFromConfig(cfg)
		case TypeBangumi:
			v, err = NewBangumiFromConfig(cfg)
		case TypeOIDC:
			v, err = NewOIDCFromConfig(ctx, cfg)
		default:
			return nil, fmt.Errorf("unknown provider type %q for provider %q", cfg.Type, cfg.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s provider %q: %w", cfg.Type, cfg.Name, err)
		}
		if err := registry.Register(v, cfg.Timeout); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
