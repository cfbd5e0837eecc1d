package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yishiba/animeko/internal/audit"
	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/service"
)

func testConfig(t *testing.T, storeBlock, auditBlock string) *config.Config {
	t.Helper()
	raw := fmt.Sprintf(`
session:
  issuer: animeko
  audience: animeko-clients
  ttl: 1h
keys:
  signing: k1
  keys:
    - id: k1
      type: hs256
      secret: %s
providers:
  - name: test
    type: static
    credentials:
      test_token_1:
        id: "1"
        name: Test User 1
%s
%s
`, strings.Repeat("x", 32), storeBlock, auditBlock)
	cfg, err := config.Parse([]byte(raw))
	require.NoError(t, err)
	return cfg
}

func TestBuildMemory(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t, "", ""))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.Equal(t, []string{"test"}, a.Service.Providers())

	res, err := a.Service.Login(context.Background(), service.LoginRequest{Provider: "test", Credential: "test_token_1"})
	require.NoError(t, err)
	assert.True(t, res.NewUser)

	claims, err := a.Service.Authenticate(context.Background(), res.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, claims.UserID)
	assert.Equal(t, "animeko", claims.Issuer)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuildSQLSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	dsn := "file:" + filepath.Join(dir, "animeko.db")
	auditPath := filepath.Join(dir, "audit.jsonl")
	cfg := testConfig(t,
		"store:\n  type: sql\n  dsn: "+dsn,
		"audit:\n  enabled: true\n  path: "+auditPath)

	login := func() *service.LoginResult {
		a, err := Build(context.Background(), cfg)
		require.NoError(t, err)
		defer func() { require.NoError(t, a.Close()) }()

		res, err := a.Service.Login(context.Background(), service.LoginRequest{Provider: "test", Credential: "test_token_1"})
		require.NoError(t, err)
		return res
	}

	first := login()
	second := login()
	assert.True(t, first.NewUser)
	assert.False(t, second.NewUser)
	assert.Equal(t, first.UserID, second.UserID)

	entries, err := audit.ReadFile(auditPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.LoginTokenIssued, entries[1].State)
}

func TestBuildFailsOnUnusableKey(t *testing.T) {
	cfg := testConfig(t, "", "")
	cfg.Keys.Keys[0].Secret = ""
	cfg.Keys.Keys[0].SecretEnv = "ANIMEKO_TEST_UNSET_SECRET"

	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, core.ErrSigning)
}
