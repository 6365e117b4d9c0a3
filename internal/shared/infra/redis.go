package infra

import (
	"context"

	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
	redisstore "qa-server/internal/shared/storage/redis"
)

// RedisTokens 令牌登记表使用 Redis 的组合存储
//
// 业务数据仍由内嵌的 PersistentStore 处理，令牌方法转发到 Redis，
// 令牌记录依赖 Redis TTL 过期，不再堆积在数据库中
type RedisTokens struct {
	storage.PersistentStore
	redis *redisstore.Store
}

var _ storage.PersistentStore = (*RedisTokens)(nil)

// NewRedisTokens 从 URL 连接 Redis 并包装 base
func NewRedisTokens(base storage.PersistentStore, redisURL string) (*RedisTokens, error) {
	rs, err := redisstore.NewStoreFromURL(redisURL)
	if err != nil {
		return nil, err
	}
	return WrapRedisTokens(base, rs), nil
}

// WrapRedisTokens 用已连接的 Redis 存储包装 base
func WrapRedisTokens(base storage.PersistentStore, rs *redisstore.Store) *RedisTokens {
	return &RedisTokens{PersistentStore: base, redis: rs}
}

func (s *RedisTokens) SaveToken(ctx context.Context, token *model.AuthToken) error {
	return s.redis.SaveToken(ctx, token)
}

func (s *RedisTokens) GetToken(ctx context.Context, id string) (*model.AuthToken, error) {
	return s.redis.GetToken(ctx, id)
}

func (s *RedisTokens) DeleteToken(ctx context.Context, id string) error {
	return s.redis.DeleteToken(ctx, id)
}

func (s *RedisTokens) DeleteUserTokens(ctx context.Context, userID string) error {
	return s.redis.DeleteUserTokens(ctx, userID)
}

// DeleteUser 删除用户后同步清理 Redis 中的令牌
func (s *RedisTokens) DeleteUser(ctx context.Context, id string) error {
	if err := s.PersistentStore.DeleteUser(ctx, id); err != nil {
		return err
	}
	return s.redis.DeleteUserTokens(ctx, id)
}

// Close 依次关闭 Redis 与底层存储
func (s *RedisTokens) Close() error {
	redisErr := s.redis.Close()
	if err := s.PersistentStore.Close(); err != nil {
		return err
	}
	return redisErr
}
