// Package redis Redis 存储实现
//
// 提供登录令牌登记表（storage.TokenStore），令牌记录依赖 Redis TTL 自动过期
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store Redis 存储层
type Store struct {
	client *redis.Client
}

// NewStore 创建 Redis 存储实例
func NewStore(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := ping(client); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", addr)
	return &Store{client: client}, nil
}

// NewStoreFromURL 从 URL 创建 Redis 存储实例
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := ping(client); err != nil {
		return nil, err
	}

	log.Printf("[Redis] Connected to %s", opts.Addr)
	return &Store{client: client}, nil
}

func ping(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

// Client 返回底层 Redis 客户端
func (s *Store) Client() *redis.Client {
	return s.client
}
