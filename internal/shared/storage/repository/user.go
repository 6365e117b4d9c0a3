// Package repository User 相关的存储操作
package repository

import (
	"context"
	"database/sql"

	"qa-server/internal/shared/model"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at, updated_at`

// CreateUser 创建用户，用户名重复时返回 storage.ErrDuplicate
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	query := s.rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return s.translate(err)
}

// GetUserByID 按 ID 获取用户
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = $1`)
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername 按用户名获取用户
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE username = $1`)
	return scanUser(s.db.QueryRowContext(ctx, query, username))
}

// UpdateUser 更新用户资料和密码哈希
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	query := s.rebind(`
		UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4,
			password_hash = $5, updated_at = $6
		WHERE id = $7
	`)
	res, err := s.db.ExecContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		return s.translate(err)
	}
	return expectAffected(res)
}

// DeleteUser 删除用户
// 问题、回答、令牌通过外键 ON DELETE CASCADE 一并删除
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
