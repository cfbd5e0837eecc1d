package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/api"
	"github.com/Yishiba/animeko/internal/audit"
	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/identity"
	"github.com/Yishiba/animeko/internal/idp"
	"github.com/Yishiba/animeko/internal/service"
	"github.com/Yishiba/animeko/internal/store"
	"github.com/Yishiba/animeko/internal/token"
)

// App holds the wired components of a running session service.
type App struct {
	Config    *config.Config
	Keys      *token.KeySet
	Store     core.IdentityStore
	Resolver  *identity.Resolver
	Providers *idp.Registry
	Issuer    *token.Issuer
	Verifier  *token.Verifier
	Auditor   core.Auditor
	Service   *service.SessionService

	closers []func() error
}

// Build constructs every component from cfg. On error, everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	log.Info().Msg("Loading signing keys...")
	a.Keys, err = token.LoadKeySet(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("loading keys: %w", err)
	}

	tokenOpts := token.Options{
		Issuer:   cfg.Session.Issuer,
		Audience: cfg.Session.Audience,
		Leeway:   cfg.Session.Leeway,
	}
	if a.Issuer, err = token.NewIssuer(a.Keys, tokenOpts); err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}
	if a.Verifier, err = token.NewVerifier(a.Keys, tokenOpts); err != nil {
		return nil, fmt.Errorf("creating token verifier: %w", err)
	}

	log.Info().Msg("Opening identity store...")
	identityStore, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening identity store: %w", err)
	}
	a.Store = identityStore
	a.closers = append(a.closers, closeStore)

	if a.Resolver, err = identity.NewResolver(a.Store, cfg.Store.CacheSize); err != nil {
		return nil, fmt.Errorf("creating identity resolver: %w", err)
	}

	log.Info().Msg("Initializing identity providers...")
	if a.Providers, err = idp.BuildRegistry(ctx, cfg.Providers); err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}

	if a.Auditor, err = audit.New(cfg.Audit); err != nil {
		return nil, fmt.Errorf("creating auditor: %w", err)
	}
	a.closers = append(a.closers, a.Auditor.Close)

	a.Service = service.NewSessionService(a.Providers, a.Resolver, a.Issuer, a.Verifier, a.Auditor, service.Config{
		TTL:             cfg.Session.TTL,
		ProviderTimeout: cfg.Session.ProviderTimeout,
	})

	log.Info().
		Strs("providers", a.Providers.Names()).
		Strs("keys", a.Keys.IDs()).
		Str("signing_key", a.Keys.SigningKey().ID).
		Dur("ttl", cfg.Session.TTL).
		Msg("session service ready")
	return a, nil
}

// Handler returns the HTTP handler serving the session API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.Service).Routes()
}

// Close releases the store and the auditor in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
