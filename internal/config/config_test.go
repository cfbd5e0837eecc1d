package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
session:
  issuer: animeko
  audience: animeko-clients
  leeway: 30s
keys:
  signing: k2
  keys:
    - id: k1
      type: ed25519
      public_key: MCowBQYDK2VwAyEA
    - id: k2
      type: hs256
      secret_env: ANIMEKO_SIGNING_SECRET
providers:
  - name: bangumi
    type: bangumi
    timeout: 5s
    user_agent: animeko-test
  - name: test
    type: static
    credentials:
      test_token_1:
        id: "1"
store:
  type: sql
  dsn: file:animeko.db
audit:
  enabled: true
  path: audit.jsonl
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "animeko", cfg.Session.Issuer)
	assert.Equal(t, 30*time.Second, cfg.Session.Leeway)
	assert.Equal(t, DefaultTTL, cfg.Session.TTL)
	assert.Equal(t, DefaultProviderTimeout, cfg.Session.ProviderTimeout)

	assert.Equal(t, "k2", cfg.Keys.Signing)
	require.Len(t, cfg.Keys.Keys, 2)
	assert.Equal(t, "ANIMEKO_SIGNING_SECRET", cfg.Keys.Keys[1].SecretEnv)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, 5*time.Second, cfg.Providers[0].Timeout)
	assert.Equal(t, "animeko-test", cfg.Providers[0].Config["user_agent"])
	assert.Contains(t, cfg.Providers[1].Config, "credentials")

	assert.Equal(t, StoreTypeSQL, cfg.Store.Type)
	assert.Equal(t, DefaultCacheSize, cfg.Store.CacheSize)
	assert.Equal(t, "file", cfg.Audit.Type)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animeko.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "animeko-clients", cfg.Session.Audience)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"missing issuer", [2]string{"issuer: animeko", "issuer: ''"}, "session.issuer"},
		{"negative ttl", [2]string{"leeway: 30s", "ttl: -1s"}, "session.ttl"},
		{"unknown signing key", [2]string{"signing: k2", "signing: k3"}, "signing key 'k3'"},
		{"verify-only signing key", [2]string{"signing: k2", "signing: k1"}, "verify-only"},
		{"unknown key type", [2]string{"type: hs256", "type: rs256"}, "unknown type"},
		{"mixed key material", [2]string{"public_key: MCowBQYDK2VwAyEA", "secret: abc"}, "ed25519 keys only accept"},
		{"duplicate provider", [2]string{"name: test", "name: bangumi"}, "duplicate provider"},
		{"provider without type", [2]string{"type: static", "type: ''"}, "empty type"},
		{"unknown store", [2]string{"type: sql", "type: etcd"}, "unknown store type"},
		{"sql without dsn", [2]string{"dsn: file:animeko.db", "dsn: ''"}, "store.dsn"},
		{"audit without path", [2]string{"path: audit.jsonl", "path: ''"}, "audit.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Replace(validConfig, tt.replace[0], tt.replace[1], 1)
			require.NotEqual(t, validConfig, raw)

			_, err := Parse([]byte(raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRequiresProviders(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	cfg.Providers = nil
	assert.ErrorContains(t, cfg.Validate(), "at least one provider")
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("session: [unterminated"))
	assert.Error(t, err)
}
