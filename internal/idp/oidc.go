package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

const TypeOIDC = "oidc"

var integerLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)

var _ core.IdentityVerifier = (*OIDCVerifier)(nil)

type OIDCConfig struct {
	IssuerURL string `mapstructure:"issuer_url"`
	// ClientID is the expected audience of the ID token.
	ClientID string `mapstructure:"client_id"`
	// SubjectClaim names the claim used as subject id, defaults to "sub".
	SubjectClaim string `mapstructure:"subject_claim"`
}

// OIDCVerifier accepts OpenID Connect ID tokens issued for ClientID.
type OIDCVerifier struct {
	name         string
	subjectClaim string
	verifier     *oidc.IDTokenVerifier
}

// NewOIDC performs provider discovery, so ctx bounds the discovery request.
func NewOIDC(ctx context.Context, name string, conf OIDCConfig) (*OIDCVerifier, error) {
	if conf.IssuerURL == "" {
		return nil, fmt.Errorf("oidc provider '%s' missing 'issuer_url'", name)
	}
	if conf.ClientID == "" {
		return nil, fmt.Errorf("oidc provider '%s' missing 'client_id'", name)
	}
	if conf.SubjectClaim == "" {
		conf.SubjectClaim = "sub"
	}

	provider, err := oidc.NewProvider(ctx, conf.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("creating oidc provider for '%s': %w", name, err)
	}

	return &OIDCVerifier{
		name:         name,
		subjectClaim: conf.SubjectClaim,
		verifier:     provider.Verifier(&oidc.Config{ClientID: conf.ClientID}),
	}, nil
}

func NewOIDCFromConfig(ctx context.Context, cfg config.ProviderConfig) (*OIDCVerifier, error) {
	var conf OIDCConfig
	if err := decodeConfig(cfg, &conf); err != nil {
		return nil, err
	}
	return NewOIDC(ctx, cfg.Name, conf)
}

func (o *OIDCVerifier) Name() string {
	return o.name
}

func (o *OIDCVerifier) Verify(ctx context.Context, credential string) (*core.ExternalSubject, error) {
	if credential == "" {
		return nil, errEmptyCredential
	}

	idToken, err := o.verifier.Verify(ctx, credential)
	if err != nil {
		if isTransportError(ctx, err) || isKeyFetchError(err) {
			return nil, unavailable(o.name, err)
		}
		return nil, rejected(o.name, err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, rejected(o.name, fmt.Errorf("extracting claims: %w", err))
	}

	var raw map[string]json.RawMessage
	if err := idToken.Claims(&raw); err != nil {
		return nil, rejected(o.name, fmt.Errorf("extracting claims: %w", err))
	}
	id, ok := subjectID(raw[o.subjectClaim])
	if !ok {
		return nil, rejected(o.name, fmt.Errorf("token has no usable '%s' claim", o.subjectClaim))
	}

	return &core.ExternalSubject{
		Provider:    o.name,
		ID:          id,
		DisplayName: firstString(claims, "name", "preferred_username", "email"),
		Attributes:  claims,
	}, nil
}

// subjectID accepts a non-empty string or an integer literal.
// Integers keep their literal digits; going through float64 would merge ids above 2^53.
func subjectID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	lit := string(raw)
	if !integerLiteral.MatchString(lit) {
		return "", false
	}
	return lit, true
}

// isKeyFetchError detects failures to download the JWKS.
// go-oidc flattens the underlying error into the message, so the chain cannot be inspected.
func isKeyFetchError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fetching keys") || strings.Contains(msg, "get keys failed")
}

func firstString(claims map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
