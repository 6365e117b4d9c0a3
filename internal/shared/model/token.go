package model

import "time"

// AuthToken 登录令牌记录
//
// ID 即 JWT 的 jti。登出、删除用户或过期后记录失效，
// 中间件只接受仍在登记表中的令牌
type AuthToken struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	UserID    string    `json:"user_id" bson:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at" db:"expires_at"`
}

// Expired 令牌是否已过期
func (t *AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
