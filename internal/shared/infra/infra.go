// Package infra 基础设施聚合层
//
// 按配置初始化持久化存储，并完成依赖注入：
//   - Storage：持久化存储（SQLite / PostgreSQL / MongoDB）
//   - Tokens：登录令牌登记表（默认与 Storage 相同，可切换到 Redis）
package infra

import (
	"fmt"
	"log"

	"qa-server/internal/config"
	"qa-server/internal/shared/storage"
	"qa-server/internal/shared/storage/driver/postgres"
	"qa-server/internal/shared/storage/driver/sqlite"
	"qa-server/internal/shared/storage/mongostore"
	"qa-server/internal/shared/storage/repository"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 业务存储；token_store=redis 时令牌方法已由 Redis 接管
	Storage storage.PersistentStore

	// Tokens 非 nil 表示令牌登记表使用 Redis
	Tokens *RedisTokens
}

// New 根据配置初始化基础设施
func New(cfg *config.Config) (*Infrastructure, error) {
	store, err := OpenStore(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DatabaseDBName)
	if err != nil {
		return nil, err
	}

	infra := &Infrastructure{Storage: store}
	if cfg.Auth.TokenStore != config.TokenStoreRedis {
		return infra, nil
	}

	tokens, err := NewRedisTokens(store, cfg.RedisURL)
	if err != nil {
		store.Close()
		return nil, err
	}
	infra.Storage = tokens
	infra.Tokens = tokens
	return infra, nil
}

// OpenStore 按驱动打开持久化存储，SQL 驱动会自动建表
func OpenStore(driver, databaseURL, dbName string) (storage.PersistentStore, error) {
	switch driver {
	case "mongodb":
		return mongostore.NewStore(databaseURL, dbName)
	case "postgres":
		db, err := postgres.Open(databaseURL)
		if err != nil {
			return nil, err
		}
		return migrate(repository.NewStore(db, postgres.NewDialect()))
	case "sqlite", "":
		db, err := sqlite.Open(databaseURL)
		if err != nil {
			return nil, err
		}
		return migrate(repository.NewStore(db, sqlite.NewDialect()))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func migrate(store *repository.Store) (storage.PersistentStore, error) {
	dialect := store.Dialect()
	if err := dialect.AutoMigrate(store.DB()); err != nil {
		store.Close()
		return nil, fmt.Errorf("auto migrate (%s): %w", dialect.DriverType(), err)
	}
	log.Printf("[Storage] %s schema ready", dialect.DriverType())
	return store, nil
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	if i.Storage == nil {
		return nil
	}
	return i.Storage.Close()
}
