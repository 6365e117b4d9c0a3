// Package repository AuthToken 相关的存储操作
package repository

import (
	"context"
	"database/sql"

	"qa-server/internal/shared/model"
)

// SaveToken 登记令牌
func (s *Store) SaveToken(ctx context.Context, token *model.AuthToken) error {
	var expiresAt sql.NullTime
	if !token.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: token.ExpiresAt, Valid: true}
	}
	query := s.rebind(`INSERT INTO auth_tokens (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`)
	_, err := s.db.ExecContext(ctx, query, token.ID, token.UserID, token.CreatedAt, expiresAt)
	return s.translate(err)
}

// GetToken 查询令牌记录
func (s *Store) GetToken(ctx context.Context, id string) (*model.AuthToken, error) {
	query := s.rebind(`SELECT id, user_id, created_at, expires_at FROM auth_tokens WHERE id = $1`)
	token := &model.AuthToken{}
	var expiresAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(&token.ID, &token.UserID, &token.CreatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		token.ExpiresAt = expiresAt.Time
	}
	return token, nil
}

// DeleteToken 删除令牌（登出），不存在时视为成功
func (s *Store) DeleteToken(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM auth_tokens WHERE id = $1`), id)
	return err
}

// DeleteUserTokens 删除用户的全部令牌
func (s *Store) DeleteUserTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM auth_tokens WHERE user_id = $1`), userID)
	return err
}
