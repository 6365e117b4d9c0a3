package mongostore

import (
	"context"
	"fmt"

	"qa-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "username", Value: username}})
}

func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	return updateFields(ctx, s.col(ColUsers), user.ID, bson.D{
		{Key: "username", Value: user.Username},
		{Key: "email", Value: user.Email},
		{Key: "first_name", Value: user.FirstName},
		{Key: "last_name", Value: user.LastName},
		{Key: "password_hash", Value: user.PasswordHash},
		{Key: "updated_at", Value: user.UpdatedAt},
	})
}

// DeleteUser 依次删除用户的问题（及其回答）、回答、令牌，最后删除用户本身
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	questions, err := findMany[model.Question](ctx, s.col(ColQuestions), bson.D{{Key: "owner_id", Value: id}})
	if err != nil {
		return err
	}
	if len(questions) > 0 {
		ids := make(bson.A, 0, len(questions))
		for _, q := range questions {
			ids = append(ids, q.ID)
		}
		if _, err := s.col(ColAnswers).DeleteMany(ctx, bson.D{{Key: "question_id", Value: bson.D{{Key: "$in", Value: ids}}}}); err != nil {
			return fmt.Errorf("delete answers of user questions: %w", wrapError(err))
		}
		if _, err := s.col(ColQuestions).DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}); err != nil {
			return fmt.Errorf("delete user questions: %w", wrapError(err))
		}
	}
	if _, err := s.col(ColAnswers).DeleteMany(ctx, bson.D{{Key: "owner_id", Value: id}}); err != nil {
		return fmt.Errorf("delete user answers: %w", wrapError(err))
	}
	if err := s.DeleteUserTokens(ctx, id); err != nil {
		return err
	}
	return deleteByID(ctx, s.col(ColUsers), id)
}
