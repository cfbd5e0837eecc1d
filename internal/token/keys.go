package token

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

// MinHMACSecretLength is the minimum length of an HS256 secret in bytes.
const MinHMACSecretLength = 32

// Key is a single signing or verification key identified by its key id.
type Key struct {
	ID     string
	Method jwt.SigningMethod

	signKey   any
	verifyKey any
}

// CanSign reports whether the key holds private material.
func (k *Key) CanSign() bool {
	return k.signKey != nil
}

func NewHMACKey(id string, secret []byte) (*Key, error) {
	if id == "" {
		return nil, core.NewError(core.KindSigningError, "key id is required")
	}
	if len(secret) < MinHMACSecretLength {
		return nil, core.NewError(core.KindSigningError,
			"hs256 key '%s' is too short: need at least %d bytes, got %d", id, MinHMACSecretLength, len(secret))
	}
	secret = bytes.Clone(secret)
	return &Key{
		ID:        id,
		Method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
	}, nil
}

func NewEd25519Key(id string, priv ed25519.PrivateKey) (*Key, error) {
	if id == "" {
		return nil, core.NewError(core.KindSigningError, "key id is required")
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, core.NewError(core.KindSigningError, "ed25519 key '%s' has invalid length %d", id, len(priv))
	}
	return &Key{
		ID:        id,
		Method:    jwt.SigningMethodEdDSA,
		signKey:   priv,
		verifyKey: priv.Public().(ed25519.PublicKey),
	}, nil
}

// NewEd25519PublicKey creates a verify-only key.
func NewEd25519PublicKey(id string, pub ed25519.PublicKey) (*Key, error) {
	if id == "" {
		return nil, core.NewError(core.KindSigningError, "key id is required")
	}
	if len(pub) != ed25519.PublicKeySize {
		return nil, core.NewError(core.KindSigningError, "ed25519 public key '%s' has invalid length %d", id, len(pub))
	}
	return &Key{
		ID:        id,
		Method:    jwt.SigningMethodEdDSA,
		verifyKey: pub,
	}, nil
}

// KeySet holds the key used for signing and all keys accepted during verification.
// It is immutable after construction and safe for concurrent use.
type KeySet struct {
	signing  *Key
	accepted map[string]*Key
}

// NewKeySet creates a key set that signs with signing and accepts signing plus additional.
func NewKeySet(signing *Key, additional ...*Key) (*KeySet, error) {
	if signing == nil {
		return nil, core.NewError(core.KindSigningError, "no signing key configured")
	}
	if !signing.CanSign() {
		return nil, core.NewError(core.KindSigningError, "key '%s' cannot be used for signing", signing.ID)
	}
	set := &KeySet{
		signing:  signing,
		accepted: map[string]*Key{signing.ID: signing},
	}
	for _, k := range additional {
		if k == nil {
			continue
		}
		if _, ok := set.accepted[k.ID]; ok {
			return nil, core.NewError(core.KindSigningError, "duplicate key id '%s'", k.ID)
		}
		set.accepted[k.ID] = k
	}
	return set, nil
}

func (s *KeySet) SigningKey() *Key {
	return s.signing
}

// Lookup returns the accepted key with the given id.
func (s *KeySet) Lookup(kid string) (*Key, bool) {
	k, ok := s.accepted[kid]
	return k, ok
}

// IDs returns the ids of all accepted keys, sorted.
func (s *KeySet) IDs() []string {
	ids := make([]string, 0, len(s.accepted))
	for id := range s.accepted {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LoadKeySet resolves the configured key material.
// Any problem is reported as a KindSigningError so that startup fails early.
func LoadKeySet(cfg config.KeysConfig) (*KeySet, error) {
	var (
		signing *Key
		others  []*Key
	)
	for _, kc := range cfg.Keys {
		k, err := loadKey(kc)
		if err != nil {
			return nil, err
		}
		if kc.ID == cfg.Signing {
			signing = k
		} else {
			others = append(others, k)
		}
	}
	if signing == nil {
		return nil, core.NewError(core.KindSigningError, "signing key '%s' is not defined", cfg.Signing)
	}
	return NewKeySet(signing, others...)
}

func loadKey(kc config.KeyConfig) (*Key, error) {
	switch kc.Type {
	case config.KeyTypeHS256:
		secret, err := readSecret(kc)
		if err != nil {
			return nil, core.WrapError(core.KindSigningError, err, "loading key '%s'", kc.ID)
		}
		return NewHMACKey(kc.ID, secret)
	case config.KeyTypeEd25519:
		if kc.PublicKey != "" {
			pub, err := parseEd25519Public(kc.PublicKey)
			if err != nil {
				return nil, core.WrapError(core.KindSigningError, err, "loading public key '%s'", kc.ID)
			}
			return NewEd25519PublicKey(kc.ID, pub)
		}
		raw := kc.PrivateKey
		if kc.PrivateKeyFile != "" {
			data, err := os.ReadFile(kc.PrivateKeyFile)
			if err != nil {
				return nil, core.WrapError(core.KindSigningError, err, "loading key '%s'", kc.ID)
			}
			raw = string(data)
		}
		priv, err := parseEd25519Private(raw)
		if err != nil {
			return nil, core.WrapError(core.KindSigningError, err, "loading key '%s'", kc.ID)
		}
		return NewEd25519Key(kc.ID, priv)
	default:
		return nil, core.NewError(core.KindSigningError, "key '%s' has unknown type '%s'", kc.ID, kc.Type)
	}
}

func readSecret(kc config.KeyConfig) ([]byte, error) {
	switch {
	case kc.Secret != "":
		return []byte(kc.Secret), nil
	case kc.SecretEnv != "":
		val, ok := os.LookupEnv(kc.SecretEnv)
		if !ok || val == "" {
			return nil, fmt.Errorf("environment variable '%s' is not set", kc.SecretEnv)
		}
		return []byte(val), nil
	case kc.SecretFile != "":
		data, err := os.ReadFile(kc.SecretFile)
		if err != nil {
			return nil, err
		}
		return bytes.TrimSpace(data), nil
	default:
		return nil, fmt.Errorf("no secret configured")
	}
}

func parseEd25519Private(raw string) (ed25519.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-----BEGIN") {
		key, err := jwt.ParseEdPrivateKeyFromPEM([]byte(raw))
		if err != nil {
			return nil, err
		}
		priv, ok := key.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("pem does not contain an ed25519 private key")
		}
		return priv, nil
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}
	switch len(data) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(data), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(data), nil
	default:
		return nil, fmt.Errorf("private key has invalid length %d", len(data))
	}
}

func parseEd25519Public(raw string) (ed25519.PublicKey, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-----BEGIN") {
		key, err := jwt.ParseEdPublicKeyFromPEM([]byte(raw))
		if err != nil {
			return nil, err
		}
		pub, ok := key.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("pem does not contain an ed25519 public key")
		}
		return pub, nil
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key has invalid length %d", len(data))
	}
	return ed25519.PublicKey(data), nil
}

// GenerateHMACSecret returns a random secret suitable for an hs256 key.
func GenerateHMACSecret() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateEd25519 returns a base64 encoded seed and the matching public key.
func GenerateEd25519() (seed string, public string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(priv.Seed()), base64.StdEncoding.EncodeToString(pub), nil
}
