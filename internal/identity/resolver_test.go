package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yishiba/animeko/internal/core"
	"github.com/Yishiba/animeko/internal/store"
)

// countingStore records how often the underlying store is hit.
type countingStore struct {
	core.IdentityStore
	calls atomic.Int32
}

func (s *countingStore) GetOrCreate(ctx context.Context, link core.IdentityLink) (core.IdentityLink, bool, error) {
	s.calls.Add(1)
	return s.IdentityStore.GetOrCreate(ctx, link)
}

type failingStore struct {
	core.IdentityStore
}

func (failingStore) GetOrCreate(context.Context, core.IdentityLink) (core.IdentityLink, bool, error) {
	return core.IdentityLink{}, false, errors.New("connection reset by peer")
}

func subject(id string) *core.ExternalSubject {
	return &core.ExternalSubject{Provider: "bangumi", ID: id}
}

func TestResolveIsIdempotent(t *testing.T) {
	for _, cacheSize := range []int{0, 16} {
		r, err := NewResolver(store.NewInMemoryIdentityStore(), cacheSize)
		require.NoError(t, err)
		ctx := context.Background()

		first, err := r.Resolve(ctx, "bangumi", subject("42"))
		require.NoError(t, err)
		assert.NotEmpty(t, first)

		for range 5 {
			again, err := r.Resolve(ctx, "bangumi", subject("42"))
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestResolveLinkReportsCreation(t *testing.T) {
	r, err := NewResolver(store.NewInMemoryIdentityStore(), 0)
	require.NoError(t, err)
	ctx := context.Background()

	link, created, err := r.ResolveLink(ctx, "bangumi", &core.ExternalSubject{ID: "42", DisplayName: "sora"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sora", link.DisplayName)
	assert.False(t, link.CreatedAt.IsZero())

	_, created, err = r.ResolveLink(ctx, "bangumi", subject("42"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestResolveConcurrentFirstLogin(t *testing.T) {
	backing := store.NewInMemoryIdentityStore()
	r, err := NewResolver(backing, 16)
	require.NoError(t, err)

	const workers = 50
	ids := make([]core.UserID, workers)
	errs := make([]error, workers)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ids[i], errs[i] = r.Resolve(context.Background(), "bangumi", subject("race"))
		}()
	}
	close(start)
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	n, err := backing.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResolveFederationIsolation(t *testing.T) {
	r, err := NewResolver(store.NewInMemoryIdentityStore(), 16)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := r.Resolve(ctx, "bangumi", subject("1000"))
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "oidc", subject("1000"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestResolveUsesCache(t *testing.T) {
	backing := &countingStore{IdentityStore: store.NewInMemoryIdentityStore()}
	r, err := NewResolver(backing, 16)
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		_, err := r.Resolve(ctx, "bangumi", subject("42"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), backing.calls.Load())
}

func TestResolveStorageFailure(t *testing.T) {
	r, err := NewResolver(failingStore{}, 16)
	require.NoError(t, err)

	id, err := r.Resolve(context.Background(), "bangumi", subject("42"))
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.Empty(t, id)
}

func TestResolveRejectsEmptyInput(t *testing.T) {
	r, err := NewResolver(store.NewInMemoryIdentityStore(), 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = r.Resolve(ctx, "", subject("42"))
	assert.Error(t, err)
	_, err = r.Resolve(ctx, "bangumi", subject(""))
	assert.Error(t, err)
	_, err = r.Resolve(ctx, "bangumi", nil)
	assert.Error(t, err)
}
