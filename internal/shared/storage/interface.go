// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：repository/（PostgreSQL、SQLite）、mongostore/、redis/
//   - 初始化时通过依赖注入传入实现（见 infra 包）
//
// 查询约定：Get* 在实体不存在时返回 (nil, nil)；
// Update*/Delete* 未命中时返回 ErrNotFound；唯一键冲突返回 ErrDuplicate。
package storage

import (
	"context"
	"time"

	"qa-server/internal/shared/model"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUser 删除用户，级联删除其问题、回答和令牌
	DeleteUser(ctx context.Context, id string) error
}

// TagStore 标签存储接口
//
// name 上必须有唯一索引，CreateTag 冲突时返回 ErrDuplicate，
// 由 tag.Resolver 负责重试查询
type TagStore interface {
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
	CreateTag(ctx context.Context, tag *model.Tag) error
	ListTags(ctx context.Context) ([]*model.Tag, error)
}

// QuestionStore 问题存储接口
type QuestionStore interface {
	// CreateQuestion 在一个事务内写入问题及其标签关联
	CreateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
	ListQuestions(ctx context.Context, limit, offset int) ([]*model.Question, int, error)
	// UpdateQuestion 更新问题字段；tags 非 nil 时整体替换标签关联
	UpdateQuestion(ctx context.Context, q *model.Question, tags []*model.Tag) error
	// DeleteQuestion 删除问题，级联删除其回答和标签关联（标签本身保留）
	DeleteQuestion(ctx context.Context, id string) error
}

// AnswerStore 回答存储接口
type AnswerStore interface {
	CreateAnswer(ctx context.Context, a *model.Answer) error
	GetAnswer(ctx context.Context, id string) (*model.Answer, error)
	ListAnswers(ctx context.Context, limit, offset int) ([]*model.Answer, int, error)
	ListAnswersByQuestion(ctx context.Context, questionID string, limit, offset int) ([]*model.Answer, int, error)
	// UpdateAnswer 只更新 description 和 published_at
	UpdateAnswer(ctx context.Context, a *model.Answer) error
	// MarkAnswerCorrect 将回答标记为正确（单向，不会重置）
	MarkAnswerCorrect(ctx context.Context, id string, at time.Time) error
	DeleteAnswer(ctx context.Context, id string) error
}

// TokenStore 登录令牌登记表
type TokenStore interface {
	SaveToken(ctx context.Context, token *model.AuthToken) error
	GetToken(ctx context.Context, id string) (*model.AuthToken, error)
	DeleteToken(ctx context.Context, id string) error
	DeleteUserTokens(ctx context.Context, userID string) error
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	TagStore
	QuestionStore
	AnswerStore
	TokenStore
	Close() error
}
