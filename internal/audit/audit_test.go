package audit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yishiba/animeko/internal/config"
	"github.com/Yishiba/animeko/internal/core"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	assert.True(t, strings.HasPrefix(a, "sha256:"))
	assert.NotContains(t, a, "token-a")
	assert.Equal(t, a, Fingerprint("token-a"))
	assert.NotEqual(t, a, Fingerprint("token-b"))
	assert.Empty(t, Fingerprint(""))
}

func TestFileAuditorRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	a, err := New(config.AuditConfig{Enabled: true, Type: "file", Path: path})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, a.Log(core.AuditEntry{ID: "1", Time: now, Action: "session.login", State: core.LoginTokenIssued, Success: true}))
	require.NoError(t, a.Log(core.AuditEntry{ID: "2", Time: now, Action: "session.login", State: core.LoginFailed, ErrorKind: core.KindInvalidCredential}))
	require.NoError(t, a.Close())

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, core.LoginTokenIssued, entries[0].State)
	assert.Equal(t, core.KindInvalidCredential, entries[1].ErrorKind)
	assert.True(t, entries[1].Time.Equal(now))
}

func TestInMemoryAuditor(t *testing.T) {
	a := NewInMemoryAuditor()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, a.Log(core.AuditEntry{ID: id, Success: id != "2"}))
	}

	recent := a.GetRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "3", recent[1].ID)
	assert.Len(t, a.GetRecent(10), 3)

	failed := a.Find(func(e core.AuditEntry) bool { return !e.Success })
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].ID)
}

func TestNewDisabled(t *testing.T) {
	a, err := New(config.AuditConfig{})
	require.NoError(t, err)
	assert.IsType(t, &NoopAuditor{}, a)

	_, err = New(config.AuditConfig{Enabled: true, Type: "kafka"})
	assert.Error(t, err)
}
