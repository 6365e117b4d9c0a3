// Package repository Question 相关的存储操作
package repository

import (
	"context"
	"database/sql"

	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage/dbutil"
)

const questionColumns = `id, owner_id, title, description, is_closed, created_at, published_at`

// CreateQuestion 在一个事务内写入问题及其标签关联
//
// tags 需由调用方预先解析（tag.Resolver），关联按切片顺序记录 position
func (s *Store) CreateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := s.rebind(`
			INSERT INTO questions (` + questionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`)
		if _, err := tx.ExecContext(ctx, query,
			q.ID, q.Owner, q.Title, q.Description, q.IsClosed, q.CreatedAt, q.PublishedAt); err != nil {
			return s.translate(err)
		}
		return s.insertQuestionTags(ctx, tx, q.ID, tags)
	})
	if err != nil {
		return err
	}
	q.Tags = tagNames(tags)
	return nil
}

// GetQuestion 获取问题（含标签名称）
func (s *Store) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	query := s.rebind(`SELECT ` + questionColumns + ` FROM questions WHERE id = $1`)
	q := &model.Question{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.Owner, &q.Title, &q.Description, &q.IsClosed, &q.CreatedAt, &q.PublishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, []*model.Question{q}); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuestions 分页列出问题，按创建时间升序
func (s *Store) ListQuestions(ctx context.Context, limit, offset int) ([]*model.Question, int, error) {
	total, err := s.countRows(ctx, `SELECT COUNT(*) FROM questions`)
	if err != nil {
		return nil, 0, err
	}

	query := s.rebind(`SELECT ` + questionColumns + ` FROM questions
		ORDER BY created_at, id LIMIT $1 OFFSET $2`)
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	questions := make([]*model.Question, 0, limit)
	for rows.Next() {
		q := &model.Question{}
		if err := rows.Scan(&q.ID, &q.Owner, &q.Title, &q.Description, &q.IsClosed,
			&q.CreatedAt, &q.PublishedAt); err != nil {
			rows.Close()
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	// 先释放连接再查询标签
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachTags(ctx, questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// UpdateQuestion 更新问题字段；tags 非 nil 时在同一事务内整体替换标签关联
func (s *Store) UpdateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := s.rebind(`
			UPDATE questions SET title = $1, description = $2, is_closed = $3, published_at = $4
			WHERE id = $5
		`)
		res, err := tx.ExecContext(ctx, query, q.Title, q.Description, q.IsClosed, q.PublishedAt, q.ID)
		if err != nil {
			return err
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM question_tags WHERE question_id = $1`), q.ID); err != nil {
			return err
		}
		return s.insertQuestionTags(ctx, tx, q.ID, tags)
	})
	if err != nil {
		return err
	}
	if tags != nil {
		q.Tags = tagNames(tags)
	}
	return nil
}

// DeleteQuestion 删除问题
// 回答和标签关联通过外键级联删除，标签本身保留
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM questions WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) insertQuestionTags(ctx context.Context, ex execer, questionID string, tags []*model.Tag) error {
	query := s.rebind(`INSERT INTO question_tags (question_id, tag_id, position) VALUES ($1, $2, $3)`)
	for i, tag := range tags {
		if _, err := ex.ExecContext(ctx, query, questionID, tag.ID, i); err != nil {
			return s.translate(err)
		}
	}
	return nil
}

// attachTags 一次查询填充多个问题的标签名称（按 position 排序）
func (s *Store) attachTags(ctx context.Context, questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	byID := make(map[string]*model.Question, len(questions))
	args := make([]any, 0, len(questions))
	for _, q := range questions {
		q.Tags = []string{}
		byID[q.ID] = q
		args = append(args, q.ID)
	}

	query := `SELECT qt.question_id, t.name FROM question_tags qt
		JOIN tags t ON t.id = qt.tag_id
		WHERE qt.question_id IN (` + dbutil.PlaceholderList(s.dialect, 1, len(args)) + `)
		ORDER BY qt.question_id, qt.position`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, name string
		if err := rows.Scan(&questionID, &name); err != nil {
			return err
		}
		if q, ok := byID[questionID]; ok {
			q.Tags = append(q.Tags, name)
		}
	}
	return rows.Err()
}

func tagNames(tags []*model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
