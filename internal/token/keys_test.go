package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

func TestNewHMACKeyTooShort(t *testing.T) {
	_, err := NewHMACKey("k1", []byte("short"))
	assert.ErrorIs(t, err, core.ErrSigning)
}

func TestNewKeySet(t *testing.T) {
	_, err := NewKeySet(nil)
	assert.ErrorIs(t, err, core.ErrSigning)

	k1 := hmacKey(t, "k1")
	_, err = NewKeySet(k1, hmacKey(t, "k1"))
	assert.ErrorIs(t, err, core.ErrSigning)

	ks, err := NewKeySet(k1, edKey(t, "ed1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ed1", "k1"}, ks.IDs())
	assert.Same(t, k1, ks.SigningKey())
}

func TestLoadKeySet(t *testing.T) {
	seed, pub, err := GenerateEd25519()
	require.NoError(t, err)
	secret, err := GenerateHMACSecret()
	require.NoError(t, err)

	dir := t.TempDir()
	secretFile := filepath.Join(dir, "secret")
	require.NoError(t, os.WriteFile(secretFile, []byte(secret+"\n"), 0o600))
	t.Setenv("ANIMEKO_TEST_SECRET", secret)

	ks, err := LoadKeySet(config.KeysConfig{
		Signing: "ed-current",
		Keys: []config.KeyConfig{
			{ID: "ed-current", Type: config.KeyTypeEd25519, PrivateKey: seed},
			{ID: "ed-public", Type: config.KeyTypeEd25519, PublicKey: pub},
			{ID: "hs-inline", Type: config.KeyTypeHS256, Secret: secret},
			{ID: "hs-env", Type: config.KeyTypeHS256, SecretEnv: "ANIMEKO_TEST_SECRET"},
			{ID: "hs-file", Type: config.KeyTypeHS256, SecretFile: secretFile},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ed-current", ks.SigningKey().ID)
	assert.Equal(t, "EdDSA", ks.SigningKey().Method.Alg())
	assert.Len(t, ks.IDs(), 5)

	pubKey, ok := ks.Lookup("ed-public")
	require.True(t, ok)
	assert.False(t, pubKey.CanSign())

	fileKey, ok := ks.Lookup("hs-file")
	require.True(t, ok)
	assert.Equal(t, []byte(secret), fileKey.verifyKey)
}

func TestLoadKeySetErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.KeysConfig
	}{
		{
			name: "missing env",
			cfg: config.KeysConfig{Signing: "k1", Keys: []config.KeyConfig{
				{ID: "k1", Type: config.KeyTypeHS256, SecretEnv: "ANIMEKO_TEST_DOES_NOT_EXIST"},
			}},
		},
		{
			name: "missing file",
			cfg: config.KeysConfig{Signing: "k1", Keys: []config.KeyConfig{
				{ID: "k1", Type: config.KeyTypeHS256, SecretFile: "/does/not/exist"},
			}},
		},
		{
			name: "short secret",
			cfg: config.KeysConfig{Signing: "k1", Keys: []config.KeyConfig{
				{ID: "k1", Type: config.KeyTypeHS256, Secret: "too-short"},
			}},
		},
		{
			name: "bad base64",
			cfg: config.KeysConfig{Signing: "k1", Keys: []config.KeyConfig{
				{ID: "k1", Type: config.KeyTypeEd25519, PrivateKey: "%%%"},
			}},
		},
		{
			name: "signing key not defined",
			cfg: config.KeysConfig{Signing: "k2", Keys: []config.KeyConfig{
				{ID: "k1", Type: config.KeyTypeHS256, Secret: "0123456789abcdef0123456789abcdef"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeySet(tt.cfg)
			assert.ErrorIs(t, err, core.ErrSigning)
		})
	}
}
