// Package mongostore 实现基于 MongoDB 的 PersistentStore
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
//
// 与 SQL 实现的差异：
//   - 问题文档内联保存标签名称数组，不维护关联集合
//   - 级联删除由代码依次执行，不使用事务（单机部署无需副本集）
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"qa-server/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers      = "users"
	ColTags       = "tags"
	ColQuestions  = "questions"
	ColAnswers    = "answers"
	ColAuthTokens = "auth_tokens"
)

// Store 实现 storage.PersistentStore 接口的 MongoDB 驱动
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "qa"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// 唯一索引是标签并发创建的仲裁者，失败时仍可服务但会产生重复标签
	if err := s.ensureIndexes(ctx); err != nil {
		log.Printf("WARNING: mongostore: ensure indexes failed: %v", err)
	}

	return s, nil
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ensureIndexes 创建所有必要的索引
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "username", Value: 1}}, true},

		// tags
		{ColTags, bson.D{{Key: "name", Value: 1}}, true},

		// questions
		{ColQuestions, bson.D{{Key: "owner_id", Value: 1}}, false},
		{ColQuestions, bson.D{{Key: "created_at", Value: 1}}, false},

		// answers
		{ColAnswers, bson.D{{Key: "question_id", Value: 1}}, false},
		{ColAnswers, bson.D{{Key: "owner_id", Value: 1}}, false},

		// auth_tokens
		{ColAuthTokens, bson.D{{Key: "user_id", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}
