package mongostore

import (
	"context"

	"qa-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// TokenStore
// ============================================================================

func (s *Store) SaveToken(ctx context.Context, token *model.AuthToken) error {
	return insertOne(ctx, s.col(ColAuthTokens), token)
}

func (s *Store) GetToken(ctx context.Context, id string) (*model.AuthToken, error) {
	return findOne[model.AuthToken](ctx, s.col(ColAuthTokens), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) DeleteToken(ctx context.Context, id string) error {
	_, err := s.col(ColAuthTokens).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return wrapError(err)
}

func (s *Store) DeleteUserTokens(ctx context.Context, userID string) error {
	_, err := s.col(ColAuthTokens).DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}})
	return wrapError(err)
}
