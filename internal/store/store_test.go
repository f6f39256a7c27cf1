package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brizzai/auth-gateway/internal/auth/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testGrant(access, refresh string) models.TokenGrant {
	return models.TokenGrant{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond),
	}
}

func TestUpsertCreates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	grant := testGrant("AT1", "RT1")
	info := models.UserInfo{ID: "prov-42", Email: "u@example.com", Name: "U"}

	user, err := s.Upsert(ctx, "prov-42", info, grant)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "prov-42", user.ProviderID)
	assert.Equal(t, "AT1", user.AccessToken)
	assert.Equal(t, "RT1", user.RefreshToken)
	assert.True(t, user.TokenExpiresAt.Equal(grant.ExpiresAt))
	assert.False(t, user.LastLogin.IsZero())
	assert.True(t, user.CreatedAt.Equal(user.UpdatedAt))
}

func TestUpsertRefreshesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	info := models.UserInfo{ID: "prov-42", Email: "u@example.com", Name: "U"}

	first, err := s.Upsert(ctx, "prov-42", info, testGrant("AT1", "RT1"))
	require.NoError(t, err)

	second, err := s.Upsert(ctx, "prov-42", info, testGrant("AT2", "RT2"))
	require.NoError(t, err)

	// Same durable identity, refreshed credentials.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "AT2", second.AccessToken)
	assert.Equal(t, "RT2", second.RefreshToken)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	loaded, err := s.GetByProviderID(ctx, "prov-42")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "AT2", loaded.AccessToken)
}

func TestUpsertDistinctProviderIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Upsert(ctx, "prov-a", models.UserInfo{ID: "prov-a"}, testGrant("ATA", "RTA"))
	require.NoError(t, err)
	b, err := s.Upsert(ctx, "prov-b", models.UserInfo{ID: "prov-b"}, testGrant("ATB", "RTB"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestConcurrentUpsertsNoInterleaving(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	info := models.UserInfo{ID: "prov-42"}

	grants := []models.TokenGrant{
		testGrant("AT1", "RT1"),
		testGrant("AT2", "RT2"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(grants))
	for i, grant := range grants {
		wg.Add(1)
		go func(i int, grant models.TokenGrant) {
			defer wg.Done()
			_, errs[i] = s.Upsert(ctx, "prov-42", info, grant)
		}(i, grant)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := s.GetByProviderID(ctx, "prov-42")
	require.NoError(t, err)
	require.NotNil(t, stored)

	// The stored credential pair must match one grant entirely.
	got := models.TokenGrant{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		ExpiresAt:    stored.TokenExpiresAt,
	}
	matchesOne := cmp.Equal(got, grants[0]) || cmp.Equal(got, grants[1])
	assert.True(t, matchesOne, "stored grant %+v mixes fields from both writes", got)
}

func TestGetByIDMissing(t *testing.T) {
	s := newTestStore(t)

	user, err := s.GetByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Upsert(ctx, "prov-42", models.UserInfo{ID: "prov-42", Name: "U"}, testGrant("AT1", "RT1"))
	require.NoError(t, err)

	loaded, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, created.ProviderID, loaded.ProviderID)
	assert.Equal(t, created.AccessToken, loaded.AccessToken)
}
