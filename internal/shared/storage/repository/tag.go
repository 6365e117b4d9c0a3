// Package repository Tag 相关的存储操作
package repository

import (
	"context"
	"database/sql"

	"qa-server/internal/shared/model"
)

// GetTagByName 按名称精确查找标签
func (s *Store) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	query := s.rebind(`SELECT id, name, created_at FROM tags WHERE name = $1`)
	tag := &model.Tag{}
	err := s.db.QueryRowContext(ctx, query, name).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateTag 创建标签
// name 唯一索引冲突时返回 storage.ErrDuplicate，调用方重新查询即可
func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) error {
	query := s.rebind(`INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`)
	_, err := s.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.CreatedAt)
	return s.translate(err)
}

// ListTags 按名称列出全部标签
func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
