// Package auth 用户认证：JWT 令牌管理、密码哈希、HTTP 中间件
//
// 登录签发的 JWT 以 jti 为键登记在 storage.TokenStore 中，
// 登出或删除用户时删除登记记录，令牌随即失效
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
)

// contextKey context 键类型
type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// ErrInvalidToken 令牌无效、已过期或已被吊销
var ErrInvalidToken = errors.New("invalid token")

// AuthUser 当前请求的认证主体
type AuthUser struct {
	ID       string
	Username string
	TokenID  string // 本次请求使用的令牌 jti，登出时吊销
}

// Config 认证配置
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		TokenTTL: 7 * 24 * time.Hour,
	}
}

// ============================================================================
// 密码哈希
// ============================================================================

const bcryptCost = 12

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ============================================================================
// JWT Token
// ============================================================================

// Claims JWT 声明
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// GenerateAccessToken 为用户签发令牌，返回签名串和待登记的令牌记录
func GenerateAccessToken(cfg Config, user *model.User, now time.Time) (string, *model.AuthToken, error) {
	record := &model.AuthToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       record.ID,
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: user.Username,
	}
	if cfg.TokenTTL > 0 {
		record.ExpiresAt = now.Add(cfg.TokenTTL)
		claims.ExpiresAt = jwt.NewNumericDate(record.ExpiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, record, nil
}

// ParseToken 解析并验证 JWT
func ParseToken(cfg Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("token missing jti or sub")
	}
	return claims, nil
}

// ============================================================================
// Authenticator
// ============================================================================

// UserLookup 认证所需的用户查询
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator 签发、校验、吊销令牌
type Authenticator struct {
	cfg    Config
	tokens storage.TokenStore
	users  UserLookup
	now    func() time.Time
}

// NewAuthenticator 创建认证器
// JWTSecret 为空时生成随机密钥（重启后已签发令牌全部失效）
func NewAuthenticator(cfg Config, tokens storage.TokenStore, users UserLookup) *Authenticator {
	if cfg.JWTSecret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		cfg.JWTSecret = hex.EncodeToString(buf)
		log.Printf("WARNING: JWT_SECRET not set, using a random secret; tokens will not survive restart")
	}
	return &Authenticator{
		cfg:    cfg,
		tokens: tokens,
		users:  users,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue 为用户签发并登记令牌
func (a *Authenticator) Issue(ctx context.Context, user *model.User) (string, error) {
	signed, record, err := GenerateAccessToken(a.cfg, user, a.now())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := a.tokens.SaveToken(ctx, record); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return signed, nil
}

// Authenticate 校验令牌签名、登记状态和用户存在性
//
// 令牌本身无效时返回 ErrInvalidToken；存储错误原样返回
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*AuthUser, error) {
	claims, err := ParseToken(a.cfg, raw)
	if err != nil {
		return nil, ErrInvalidToken
	}

	record, err := a.tokens.GetToken(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if record == nil || record.UserID != claims.Subject || record.Expired(a.now()) {
		return nil, ErrInvalidToken
	}

	user, err := a.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return &AuthUser{ID: user.ID, Username: user.Username, TokenID: claims.ID}, nil
}

// Revoke 吊销单个令牌
func (a *Authenticator) Revoke(ctx context.Context, tokenID string) error {
	return a.tokens.DeleteToken(ctx, tokenID)
}

// RevokeAll 吊销用户全部令牌
func (a *Authenticator) RevokeAll(ctx context.Context, userID string) error {
	return a.tokens.DeleteUserTokens(ctx, userID)
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithAuthUser 将认证用户信息注入 context
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetAuthUser 从 context 获取认证用户，匿名请求返回 nil
func GetAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(ctxKeyAuthUser).(*AuthUser)
	return user
}
