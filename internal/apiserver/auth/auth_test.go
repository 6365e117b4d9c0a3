package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-server/internal/shared/model"
)

// memTokens 内存令牌登记表
type memTokens struct {
	mu     sync.Mutex
	tokens map[string]*model.AuthToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]*model.AuthToken)}
}

func (m *memTokens) SaveToken(_ context.Context, t *model.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m *memTokens) GetToken(_ context.Context, id string) (*model.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) DeleteToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
	return nil
}

func (m *memTokens) DeleteUserTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, id)
		}
	}
	return nil
}

type memUsers map[string]*model.User

func (m memUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return m[id], nil
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := Config{JWTSecret: "s3cret", TokenTTL: time.Hour}
	user := &model.User{ID: "usr-1", Username: "alice"}
	now := time.Now()

	signed, record, err := GenerateAccessToken(cfg, user, now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, record.UserID)
	assert.WithinDuration(t, now.Add(time.Hour), record.ExpiresAt, time.Second)

	claims, err := ParseToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, record.ID, claims.ID)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "alice", claims.Username)

	_, err = ParseToken(Config{JWTSecret: "other"}, signed)
	assert.Error(t, err)
}

func TestAuthenticator_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tokens := newMemTokens()
	user := &model.User{ID: "usr-1", Username: "alice"}
	a := NewAuthenticator(Config{JWTSecret: "s3cret", TokenTTL: time.Hour}, tokens, memUsers{user.ID: user})

	t1, err := a.Issue(ctx, user)
	require.NoError(t, err)
	t2, err := a.Issue(ctx, user)
	require.NoError(t, err)

	got, err := a.Authenticate(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, got.TokenID)

	require.NoError(t, a.Revoke(ctx, got.TokenID))
	_, err = a.Authenticate(ctx, t1)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Authenticate(ctx, t2)
	require.NoError(t, err)
	require.NoError(t, a.RevokeAll(ctx, user.ID))
	_, err = a.Authenticate(ctx, t2)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Expired(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "usr-1", Username: "alice"}
	a := NewAuthenticator(Config{JWTSecret: "s3cret", TokenTTL: time.Minute}, newMemTokens(), memUsers{user.ID: user})

	token, err := a.Issue(ctx, user)
	require.NoError(t, err)

	// 令牌记录过期后即使签名仍有效也拒绝
	a.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = a.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_DeletedUser(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "usr-1", Username: "alice"}
	users := memUsers{user.ID: user}
	a := NewAuthenticator(Config{JWTSecret: "s3cret"}, newMemTokens(), users)

	token, err := a.Issue(ctx, user)
	require.NoError(t, err)
	delete(users, user.ID)

	_, err = a.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthenticator_RandomSecret(t *testing.T) {
	a := NewAuthenticator(Config{}, newMemTokens(), memUsers{})
	assert.NotEmpty(t, a.cfg.JWTSecret)
}

func TestAuthUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAuthUser(ctx))
	ctx = WithAuthUser(ctx, &AuthUser{ID: "usr-1"})
	assert.Equal(t, "usr-1", GetAuthUser(ctx).ID)
}
