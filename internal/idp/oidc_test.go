package idp

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yishiba/animeko/internal/core"
)

type fakeOIDCProvider struct {
	srv      *httptest.Server
	key      *rsa.PrivateKey
	keysDown atomic.Bool
	clientID string
	keyID    string
}

func newFakeOIDCProvider(t *testing.T) *fakeOIDCProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &fakeOIDCProvider{key: key, clientID: "animeko", keyID: "test-key"}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                p.srv.URL,
			"authorization_endpoint":                p.srv.URL + "/auth",
			"token_endpoint":                        p.srv.URL + "/token",
			"jwks_uri":                              p.srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		if p.keysDown.Load() {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": p.keyID,
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeOIDCProvider) sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = p.keyID
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func (p *fakeOIDCProvider) claims(overrides jwt.MapClaims) jwt.MapClaims {
	now := time.Now()
	c := jwt.MapClaims{
		"iss":  p.srv.URL,
		"aud":  p.clientID,
		"sub":  "user-1",
		"name": "Sora",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		c[k] = v
	}
	return c
}

func TestOIDCVerify(t *testing.T) {
	p := newFakeOIDCProvider(t)
	ctx := context.Background()

	v, err := NewOIDC(ctx, "corp", OIDCConfig{IssuerURL: p.srv.URL, ClientID: p.clientID})
	require.NoError(t, err)

	t.Run("accepted", func(t *testing.T) {
		subject, err := v.Verify(ctx, p.sign(t, p.key, p.claims(nil)))
		require.NoError(t, err)
		assert.Equal(t, "corp", subject.Provider)
		assert.Equal(t, "user-1", subject.ID)
		assert.Equal(t, "Sora", subject.DisplayName)
	})

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	rejectedTokens := map[string]string{
		"empty":          "",
		"garbage":        "invalid_token",
		"wrong audience": p.sign(t, p.key, p.claims(jwt.MapClaims{"aud": "someone-else"})),
		"wrong issuer":   p.sign(t, p.key, p.claims(jwt.MapClaims{"iss": "https://evil.example"})),
		"expired":        p.sign(t, p.key, p.claims(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})),
		"foreign key":    p.sign(t, otherKey, p.claims(nil)),
		"no subject":     p.sign(t, p.key, p.claims(jwt.MapClaims{"sub": ""})),
	}
	for name, raw := range rejectedTokens {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, raw)
			assert.ErrorIs(t, err, core.ErrInvalidCredential)
		})
	}
}

func TestOIDCCustomSubjectClaim(t *testing.T) {
	p := newFakeOIDCProvider(t)
	ctx := context.Background()

	v, err := NewOIDC(ctx, "corp", OIDCConfig{IssuerURL: p.srv.URL, ClientID: p.clientID, SubjectClaim: "employee_id"})
	require.NoError(t, err)

	subject, err := v.Verify(ctx, p.sign(t, p.key, p.claims(jwt.MapClaims{"employee_id": 1234})))
	require.NoError(t, err)
	assert.Equal(t, "1234", subject.ID)
}

func TestOIDCNumericSubjectKeepsPrecision(t *testing.T) {
	p := newFakeOIDCProvider(t)
	ctx := context.Background()

	v, err := NewOIDC(ctx, "corp", OIDCConfig{IssuerURL: p.srv.URL, ClientID: p.clientID, SubjectClaim: "uid"})
	require.NoError(t, err)

	// both ids round to the same float64
	a, err := v.Verify(ctx, p.sign(t, p.key, p.claims(jwt.MapClaims{"uid": json.Number("9007199254740993")})))
	require.NoError(t, err)
	b, err := v.Verify(ctx, p.sign(t, p.key, p.claims(jwt.MapClaims{"uid": json.Number("9007199254740992")})))
	require.NoError(t, err)

	assert.Equal(t, "9007199254740993", a.ID)
	assert.Equal(t, "9007199254740992", b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestOIDCUnusableSubjectClaim(t *testing.T) {
	p := newFakeOIDCProvider(t)
	ctx := context.Background()

	v, err := NewOIDC(ctx, "corp", OIDCConfig{IssuerURL: p.srv.URL, ClientID: p.clientID, SubjectClaim: "uid"})
	require.NoError(t, err)

	for name, uid := range map[string]any{
		"missing":  nil,
		"fraction": 1.5,
		"exponent": json.Number("1e3"),
		"bool":     true,
		"object":   map[string]any{"id": "1"},
		"empty":    "",
	} {
		t.Run(name, func(t *testing.T) {
			claims := p.claims(nil)
			if uid != nil {
				claims["uid"] = uid
			}
			_, err := v.Verify(ctx, p.sign(t, p.key, claims))
			assert.ErrorIs(t, err, core.ErrInvalidCredential)
		})
	}
}

func TestOIDCKeysUnavailable(t *testing.T) {
	p := newFakeOIDCProvider(t)
	ctx := context.Background()

	v, err := NewOIDC(ctx, "corp", OIDCConfig{IssuerURL: p.srv.URL, ClientID: p.clientID})
	require.NoError(t, err)

	p.keysDown.Store(true)
	_, err = v.Verify(ctx, p.sign(t, p.key, p.claims(nil)))
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
}

func TestOIDCConfigValidation(t *testing.T) {
	_, err := NewOIDC(context.Background(), "corp", OIDCConfig{ClientID: "x"})
	assert.Error(t, err)
	_, err = NewOIDC(context.Background(), "corp", OIDCConfig{IssuerURL: "https://example.invalid"})
	assert.Error(t, err)
}
