package mongostore

import (
	"context"

	"qa-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// TagStore
// ============================================================================

func (s *Store) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	return findOne[model.Tag](ctx, s.col(ColTags), bson.D{{Key: "name", Value: name}})
}

// CreateTag name 唯一索引冲突时 wrapError 返回 storage.ErrDuplicate
func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	return insertOne(ctx, s.col(ColTags), tag)
}

func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[model.Tag](ctx, s.col(ColTags), bson.D{}, opts)
}
