package service

import (
	"context"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Yishiba/animeko/internal/audit"
	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/logging"
)

const ActionLogin = "session.login"

// SessionService exchanges external credentials for session tokens and checks session tokens.
type SessionService struct {
	providers ProviderRegistry
	resolver  IdentityResolver
	issuer    TokenIssuer
	verifier  TokenVerifier
	auditor   core.Auditor
	cfg       Config
}

func NewSessionService(
	providers ProviderRegistry,
	resolver IdentityResolver,
	issuer TokenIssuer,
	verifier TokenVerifier,
	auditor core.Auditor,
	cfg Config,
) *SessionService {
	return &SessionService{
		providers: providers,
		resolver:  resolver,
		issuer:    issuer,
		verifier:  verifier,
		auditor:   auditor,
		cfg:       cfg,
	}
}

// Providers returns the names of the configured identity providers.
func (s *SessionService) Providers() []string {
	return s.providers.Names()
}

// Login verifies req.Credential with the requested provider, resolves the internal identity
// and issues a session token. Errors carry a core.Kind and are returned unchanged from the failing step.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	logger := log.Ctx(ctx)

	// logins outside an HTTP request still need an entry id to look them up by
	entryID := logging.CorrelationID(ctx)
	if entryID == "" {
		entryID = xid.New().String()
	}

	state := core.LoginReceived
	auditEntry := core.AuditEntry{
		ID:       entryID,
		Time:     time.Now(),
		Action:   ActionLogin,
		Provider: req.Provider,
		State:    state,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for login")
		}
	}()

	fail := func(err error, fallback core.Kind, msg string) error {
		err = core.EnsureKind(err, fallback, msg)
		auditEntry.State = core.LoginFailed
		auditEntry.FailedAt = state
		auditEntry.ErrorKind = core.KindOf(err)
		auditEntry.Error = err.Error()

		// only our own failures are errors, rejected or unknown input is not
		evt := logger.Info()
		if k := auditEntry.ErrorKind; k == core.KindStorageError || k == core.KindSigningError {
			evt = logger.Error()
		}
		evt.Err(err).
			Str("provider", req.Provider).
			Str("failed_at", string(state)).
			Str("kind", string(auditEntry.ErrorKind)).
			Msg("login failed")
		return err
	}

	verifier, err := s.providers.Lookup(req.Provider)
	if err != nil {
		return nil, fail(err, core.KindUnknownProvider, "looking up provider")
	}

	subject, err := s.verify(ctx, verifier, req)
	if err != nil {
		return nil, fail(err, core.KindProviderUnavailable, "verifying credential")
	}
	state = core.LoginCredentialVerified
	auditEntry.Subject = subject.ID

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("provider", verifier.Name()).Str("subject", subject.ID)
	})

	link, created, err := s.resolver.ResolveLink(ctx, verifier.Name(), subject)
	if err != nil {
		return nil, fail(err, core.KindStorageError, "resolving identity")
	}
	state = core.LoginIdentityResolved
	auditEntry.UserID = link.UserID
	auditEntry.NewUser = created

	tok, err := s.issuer.Issue(link.UserID, verifier.Name(), s.cfg.TTL)
	if err != nil {
		return nil, fail(err, core.KindSigningError, "issuing token")
	}
	state = core.LoginTokenIssued

	auditEntry.State = state
	auditEntry.Success = true
	auditEntry.TokenFingerprint = audit.Fingerprint(tok.Value)
	auditEntry.TokenExpiresAt = tok.Claims.ExpiresAt

	logger.Info().
		Str("user_id", link.UserID.String()).
		Bool("new_user", created).
		Time("expires_at", tok.Claims.ExpiresAt).
		Msg("session issued")

	return &LoginResult{
		Token:       tok,
		UserID:      link.UserID,
		NewUser:     created,
		DisplayName: subject.DisplayName,
	}, nil
}

func (s *SessionService) verify(ctx context.Context, verifier core.IdentityVerifier, req LoginRequest) (*core.ExternalSubject, error) {
	timeout := s.providers.Timeout(req.Provider)
	if timeout == 0 {
		timeout = s.cfg.ProviderTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	subject, err := verifier.Verify(ctx, req.Credential)
	if err != nil {
		return nil, err
	}
	if subject == nil || subject.ID == "" {
		return nil, core.NewError(core.KindInvalidCredential, "provider '%s' asserted no subject", verifier.Name())
	}
	return subject, nil
}

// Authenticate verifies a session token and returns its claims.
// It does not touch storage or the network.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*core.Claims, error) {
	if token == "" {
		return nil, core.NewError(core.KindMalformed, "no session token presented")
	}
	claims, err := s.verifier.Verify(token)
	if err != nil {
		err = core.EnsureKind(err, core.KindMalformed, "verifying session token")
		log.Ctx(ctx).Debug().
			Err(err).
			Str("fingerprint", audit.Fingerprint(token)).
			Msg("session token rejected")
		return nil, err
	}
	return claims, nil
}
