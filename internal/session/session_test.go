package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Hour), mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	info := UserInfo{Name: "Root", Role: "SUPER_ADMIN", Email: "root@shop.local"}
	require.NoError(t, store.Put(ctx, "sid-1", info))

	got, ok := store.Get(ctx, "sid-1")
	require.True(t, ok)
	assert.Equal(t, info, got)
	assert.True(t, got.HasElevatedPrivilege(), "role check is case-insensitive")
}

func TestStoreMissingSession(t *testing.T) {
	store, _ := setupStore(t)
	_, ok := store.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestStoreMalformedSessionIsNoPrivilege(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	// 手工写坏会话数据
	require.NoError(t, mr.Set("session:sid-bad", "{not json"))

	info, ok := store.Get(ctx, "sid-bad")
	assert.False(t, ok)
	assert.False(t, info.HasElevatedPrivilege())
}

func TestStoreDelete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sid-2", UserInfo{Role: "admin"}))
	require.NoError(t, store.Delete(ctx, "sid-2"))
	_, ok := store.Get(ctx, "sid-2")
	assert.False(t, ok)
}

func TestHasElevatedPrivilege(t *testing.T) {
	cases := map[string]bool{
		"super_admin":  true,
		"Super_Admin":  true,
		" SUPER_ADMIN": true,
		"admin":        false,
		"":             false,
		"superadmin":   false,
	}
	for role, want := range cases {
		assert.Equal(t, want, UserInfo{Role: role}.HasElevatedPrivilege(), "role=%q", role)
	}
}

func TestContextRoleProvider(t *testing.T) {
	var p ContextRoleProvider
	ctx := context.Background()

	assert.False(t, p.HasElevatedPrivilege(ctx))

	ctx = WithUserInfo(ctx, UserInfo{Role: "super_admin"})
	assert.True(t, p.HasElevatedPrivilege(ctx))

	ctx = WithUserInfo(context.Background(), UserInfo{Role: "admin"})
	assert.False(t, p.HasElevatedPrivilege(ctx))
}
