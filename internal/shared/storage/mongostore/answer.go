package mongostore

import (
	"context"
	"time"

	"qa-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// AnswerStore
// ============================================================================

func (s *Store) CreateAnswer(ctx context.Context, a *model.Answer) error {
	return insertOne(ctx, s.col(ColAnswers), a)
}

func (s *Store) GetAnswer(ctx context.Context, id string) (*model.Answer, error) {
	return findOne[model.Answer](ctx, s.col(ColAnswers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListAnswers(ctx context.Context, limit, offset int) ([]*model.Answer, int, error) {
	return findPage[model.Answer](ctx, s.col(ColAnswers), bson.D{}, limit, offset)
}

func (s *Store) ListAnswersByQuestion(ctx context.Context, questionID string, limit, offset int) ([]*model.Answer, int, error) {
	return findPage[model.Answer](ctx, s.col(ColAnswers), bson.D{{Key: "question_id", Value: questionID}}, limit, offset)
}

func (s *Store) UpdateAnswer(ctx context.Context, a *model.Answer) error {
	return updateFields(ctx, s.col(ColAnswers), a.ID, bson.D{
		{Key: "description", Value: a.Description},
		{Key: "published_at", Value: a.PublishedAt},
	})
}

func (s *Store) MarkAnswerCorrect(ctx context.Context, id string, at time.Time) error {
	return updateFields(ctx, s.col(ColAnswers), id, bson.D{
		{Key: "is_correct", Value: true},
		{Key: "published_at", Value: at},
	})
}

func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColAnswers), id)
}
