package infra

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-server/internal/config"
	"qa-server/internal/shared/model"
	redisstore "qa-server/internal/shared/storage/redis"
)

func TestOpenStoreSQLite(t *testing.T) {
	store, err := OpenStore("sqlite", ":memory:", "")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.CreateUser(ctx, &model.User{
		ID: "user-1", Username: "alice", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}))
	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore("mysql", "root@tcp(localhost)/qa", "qa")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewDatabaseTokenStore(t *testing.T) {
	infra, err := New(&config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    ":memory:",
		Auth:           config.AuthConfig{TokenStore: config.TokenStoreDatabase},
	})
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Tokens)
	assert.NotNil(t, infra.Storage)
}

func TestRedisTokensOverridesTokenMethods(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rs, err := redisstore.NewStore(addr, "", 2)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	rs.Client().FlushDB(context.Background())

	base, err := OpenStore("sqlite", ":memory:", "")
	require.NoError(t, err)
	store := WrapRedisTokens(base, rs)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.CreateUser(ctx, &model.User{
		ID: "user-1", Username: "alice", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}))
	tok := &model.AuthToken{ID: "jti-1", UserID: "user-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.SaveToken(ctx, tok))

	// 令牌只写入 Redis
	fromBase, err := base.GetToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Nil(t, fromBase)
	fromRedis, err := rs.GetToken(ctx, "jti-1")
	require.NoError(t, err)
	require.NotNil(t, fromRedis)

	require.NoError(t, store.DeleteUser(ctx, "user-1"))
	got, err := store.GetToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
