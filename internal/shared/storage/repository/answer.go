// Package repository Answer 相关的存储操作
package repository

import (
	"context"
	"database/sql"
	"time"

	"qa-server/internal/shared/model"
)

const answerColumns = `id, question_id, owner_id, description, is_correct, created_at, published_at`

// CreateAnswer 创建回答
func (s *Store) CreateAnswer(ctx context.Context, a *model.Answer) error {
	query := s.rebind(`
		INSERT INTO answers (` + answerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Question, a.Owner, a.Description, a.IsCorrect, a.CreatedAt, a.PublishedAt)
	return s.translate(err)
}

// GetAnswer 获取回答
func (s *Store) GetAnswer(ctx context.Context, id string) (*model.Answer, error) {
	query := s.rebind(`SELECT ` + answerColumns + ` FROM answers WHERE id = $1`)
	a := &model.Answer{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Question, &a.Owner, &a.Description, &a.IsCorrect, &a.CreatedAt, &a.PublishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnswers 分页列出全部回答
func (s *Store) ListAnswers(ctx context.Context, limit, offset int) ([]*model.Answer, int, error) {
	total, err := s.countRows(ctx, `SELECT COUNT(*) FROM answers`)
	if err != nil {
		return nil, 0, err
	}
	query := s.rebind(`SELECT ` + answerColumns + ` FROM answers
		ORDER BY created_at, id LIMIT $1 OFFSET $2`)
	answers, err := s.queryAnswers(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return answers, total, nil
}

// ListAnswersByQuestion 分页列出某问题下的回答
func (s *Store) ListAnswersByQuestion(ctx context.Context, questionID string, limit, offset int) ([]*model.Answer, int, error) {
	total, err := s.countRows(ctx, `SELECT COUNT(*) FROM answers WHERE question_id = $1`, questionID)
	if err != nil {
		return nil, 0, err
	}
	query := s.rebind(`SELECT ` + answerColumns + ` FROM answers WHERE question_id = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3`)
	answers, err := s.queryAnswers(ctx, query, questionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return answers, total, nil
}

// UpdateAnswer 更新回答内容
// question、owner、is_correct 不在此处修改
func (s *Store) UpdateAnswer(ctx context.Context, a *model.Answer) error {
	query := s.rebind(`UPDATE answers SET description = $1, published_at = $2 WHERE id = $3`)
	res, err := s.db.ExecContext(ctx, query, a.Description, a.PublishedAt, a.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// MarkAnswerCorrect 将回答标记为正确并刷新发布时间
func (s *Store) MarkAnswerCorrect(ctx context.Context, id string, at time.Time) error {
	query := s.rebind(`UPDATE answers SET is_correct = $1, published_at = $2 WHERE id = $3`)
	res, err := s.db.ExecContext(ctx, query, true, at, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteAnswer 删除回答
func (s *Store) DeleteAnswer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM answers WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) queryAnswers(ctx context.Context, query string, args ...any) ([]*model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []*model.Answer{}
	for rows.Next() {
		a := &model.Answer{}
		if err := rows.Scan(&a.ID, &a.Question, &a.Owner, &a.Description, &a.IsCorrect,
			&a.CreatedAt, &a.PublishedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
