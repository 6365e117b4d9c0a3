package mongostore

import (
	"context"
	"fmt"

	"qa-server/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// QuestionStore
// ============================================================================

// CreateQuestion 标签名称随问题文档一起写入，单文档写入天然原子
func (s *Store) CreateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error {
	q.Tags = tagNames(tags)
	return insertOne(ctx, s.col(ColQuestions), q)
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	q, err := findOne[model.Question](ctx, s.col(ColQuestions), bson.D{{Key: "_id", Value: id}})
	if q != nil && q.Tags == nil {
		q.Tags = []string{}
	}
	return q, err
}

func (s *Store) ListQuestions(ctx context.Context, limit, offset int) ([]*model.Question, int, error) {
	questions, total, err := findPage[model.Question](ctx, s.col(ColQuestions), bson.D{}, limit, offset)
	for _, q := range questions {
		if q.Tags == nil {
			q.Tags = []string{}
		}
	}
	return questions, total, err
}

func (s *Store) UpdateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error {
	update := bson.D{
		{Key: "title", Value: q.Title},
		{Key: "description", Value: q.Description},
		{Key: "is_closed", Value: q.IsClosed},
		{Key: "published_at", Value: q.PublishedAt},
	}
	var names []string
	if tags != nil {
		names = tagNames(tags)
		update = append(update, bson.E{Key: "tags", Value: names})
	}
	if err := updateFields(ctx, s.col(ColQuestions), q.ID, update); err != nil {
		return err
	}
	if tags != nil {
		q.Tags = names
	}
	return nil
}

// DeleteQuestion 先删除回答再删除问题
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := s.col(ColAnswers).DeleteMany(ctx, bson.D{{Key: "question_id", Value: id}}); err != nil {
		return fmt.Errorf("delete question answers: %w", wrapError(err))
	}
	return deleteByID(ctx, s.col(ColQuestions), id)
}

func tagNames(tags []*model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
