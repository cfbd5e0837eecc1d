package token

import (
	"encoding/base64"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yishiba/animeko/internal/core"
)

var segmentEncoding = base64.RawURLEncoding.Strict()

type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// Verifier checks session tokens. It performs no I/O and is safe for concurrent use.
type Verifier struct {
	keys     *KeySet
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

func NewVerifier(keys *KeySet, opts Options) (*Verifier, error) {
	if keys == nil {
		return nil, core.NewError(core.KindSigningError, "no key set configured")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Verifier{
		keys:     keys,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		leeway:   opts.Leeway,
		now:      opts.clock(),
		parser:   jwt.NewParser(jwt.WithoutClaimsValidation()),
	}, nil
}

// Verify checks the signature of raw before looking at any claim,
// then validates issuer, audience and the validity window.
func (v *Verifier) Verify(raw string) (*core.Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return nil, core.NewError(core.KindMalformed, "token must have 3 segments, got %d", len(parts))
	}

	headerJSON, err := segmentEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, core.WrapError(core.KindMalformed, err, "decoding token header")
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return nil, core.WrapError(core.KindMalformed, err, "parsing token header")
	}

	key, ok := v.keys.Lookup(h.Kid)
	if len(parts) != 3 {
		// a token of ours with an extra or missing separator was altered after signing
		if ok {
			return nil, core.NewError(core.KindBadSignature, "token must have 3 segments, got %d", len(parts))
		}
		return nil, core.NewError(core.KindMalformed, "token must have 3 segments, got %d", len(parts))
	}
	if !ok {
		return nil, core.NewError(core.KindBadSignature, "unknown key id '%s'", h.Kid)
	}
	if h.Alg != key.Method.Alg() {
		return nil, core.NewError(core.KindBadSignature, "algorithm '%s' does not match key '%s'", h.Alg, key.ID)
	}

	sig, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, core.WrapError(core.KindBadSignature, err, "decoding signature")
	}
	if err := key.Method.Verify(parts[0]+"."+parts[1], sig, key.verifyKey); err != nil {
		return nil, core.WrapError(core.KindBadSignature, err, "verifying signature")
	}

	var claims sessionClaims
	if _, _, err := v.parser.ParseUnverified(raw, &claims); err != nil {
		return nil, core.WrapError(core.KindMalformed, err, "decoding claims")
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, core.NewError(core.KindMalformed, "token is missing required claims")
	}

	if claims.Issuer != v.issuer {
		return nil, core.NewError(core.KindBadIssuer, "unexpected issuer '%s'", claims.Issuer)
	}
	if !slices.Contains(claims.Audience, v.audience) {
		return nil, core.NewError(core.KindBadAudience, "token is not intended for '%s'", v.audience)
	}

	now := v.now()
	if now.Before(claims.IssuedAt.Add(-v.leeway)) {
		return nil, core.NewError(core.KindNotYetValid, "token issued in the future (%s)", claims.IssuedAt.Format(time.RFC3339))
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, core.NewError(core.KindExpired, "token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	}

	out := claims.toCore()
	return &out, nil
}
