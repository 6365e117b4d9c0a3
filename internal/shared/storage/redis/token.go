// Package redis AuthToken 相关操作
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
)

// Redis Key 前缀
const (
	KeyAuthToken  = "qa:token:"
	KeyUserTokens = "qa:user_tokens:"
)

var _ storage.TokenStore = (*Store)(nil)

// SaveToken 登记令牌
//
// 令牌 Hash 的 TTL 与 ExpiresAt 对齐；用户索引集合不设 TTL，
// 读取时跳过已过期的成员
func (s *Store) SaveToken(ctx context.Context, token *model.AuthToken) error {
	key := KeyAuthToken + token.ID
	data := map[string]any{
		"user_id":    token.UserID,
		"created_at": token.CreatedAt.Format(time.RFC3339Nano),
	}
	if !token.ExpiresAt.IsZero() {
		data["expires_at"] = token.ExpiresAt.Format(time.RFC3339Nano)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	if !token.ExpiresAt.IsZero() {
		pipe.ExpireAt(ctx, key, token.ExpiresAt)
	}
	pipe.SAdd(ctx, KeyUserTokens+token.UserID, token.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// GetToken 查询令牌，不存在或已过期返回 (nil, nil)
func (s *Store) GetToken(ctx context.Context, id string) (*model.AuthToken, error) {
	result, err := s.client.HGetAll(ctx, KeyAuthToken+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if len(result) == 0 {
		return nil, nil
	}

	token := &model.AuthToken{ID: id, UserID: result["user_id"]}
	if v := result["created_at"]; v != "" {
		token.CreatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v := result["expires_at"]; v != "" {
		token.ExpiresAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	return token, nil
}

// DeleteToken 删除令牌（登出）
func (s *Store) DeleteToken(ctx context.Context, id string) error {
	key := KeyAuthToken + id
	userID, err := s.client.HGet(ctx, key, "user_id").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if userID != "" {
		pipe.SRem(ctx, KeyUserTokens+userID, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteUserTokens 删除用户的全部令牌
func (s *Store) DeleteUserTokens(ctx context.Context, userID string) error {
	idxKey := KeyUserTokens + userID
	ids, err := s.client.SMembers(ctx, idxKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list user tokens: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, KeyAuthToken+id)
	}
	keys = append(keys, idxKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}
