package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Yishiba/animeko/internal/core"
)

// sessionClaims is the wire format of the session token payload.
type sessionClaims struct {
	jwt.RegisteredClaims

	// UserID duplicates "sub" under the claim name clients already read.
	UserID   string `json:"userId"`
	Provider string `json:"provider,omitempty"`
}

func (c *sessionClaims) toCore() core.Claims {
	claims := core.Claims{
		UserID:   core.UserID(c.UserID),
		Provider: c.Provider,
		Issuer:   c.Issuer,
		Audience: []string(c.Audience),
		TokenID:  c.ID,
	}
	if claims.UserID == "" {
		claims.UserID = core.UserID(c.Subject)
	}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}
	return claims
}

// Options configures the issuer and the verifier. Both sides must agree on Issuer and Audience.
type Options struct {
	Issuer   string
	Audience string

	// Leeway is subtracted from "iat" before the not-yet-valid check.
	Leeway time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func (o Options) validate() error {
	if o.Issuer == "" {
		return fmt.Errorf("issuer is required")
	}
	if o.Audience == "" {
		return fmt.Errorf("audience is required")
	}
	if o.Leeway < 0 {
		return fmt.Errorf("leeway must not be negative")
	}
	return nil
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

// Issuer creates signed session tokens.
type Issuer struct {
	keys     *KeySet
	issuer   string
	audience string
	now      func() time.Time
}

func NewIssuer(keys *KeySet, opts Options) (*Issuer, error) {
	if keys == nil {
		return nil, core.NewError(core.KindSigningError, "no key set configured")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Issuer{
		keys:     keys,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		now:      opts.clock(),
	}, nil
}

// Issue creates a token for userID that is valid for ttl.
// A ttl of zero yields a token that is already expired.
func (i *Issuer) Issue(userID core.UserID, provider string, ttl time.Duration) (*core.SessionToken, error) {
	if userID == "" {
		return nil, core.NewError(core.KindSigningError, "cannot issue a token without user id")
	}
	if ttl < 0 {
		return nil, core.NewError(core.KindSigningError, "ttl must not be negative")
	}

	key := i.keys.SigningKey()

	// claims have second precision, so expiry is computed from the truncated issue time
	now := i.now().Truncate(time.Second)
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID:   userID.String(),
		Provider: provider,
	}

	tok := jwt.NewWithClaims(key.Method, claims)
	tok.Header["kid"] = key.ID

	signed, err := tok.SignedString(key.signKey)
	if err != nil {
		return nil, core.WrapError(core.KindSigningError, err, "signing session token with key '%s'", key.ID)
	}

	return &core.SessionToken{
		Value:  signed,
		Claims: claims.toCore(),
	}, nil
}
