// Package question 问题领域：创建、查询、更新、删除问题，以及列出问题下的回答
package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/policy"
	"qa-server/internal/apiserver/tag"
	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
)

// Store 问题领域所需的存储接口
type Store interface {
	storage.QuestionStore
	ListAnswersByQuestion(ctx context.Context, questionID string, limit, offset int) ([]*model.Answer, int, error)
}

// Observer 问题事件回调（指标采集）
type Observer interface {
	QuestionCreated()
}

type nopObserver struct{}

func (nopObserver) QuestionCreated() {}

// Input 问题请求体
//
// 指针字段区分"未提供"与零值；Tags 为 nil 表示未提供
// owner、created_at 等只读字段不在此列，客户端提交时被忽略
type Input struct {
	Title       *string  `json:"title" validate:"required,min=1,max=2000"`
	Description *string  `json:"description" validate:"required,min=1"`
	Tags        []string `json:"tags" validate:"required,min=1"`
	IsClosed    *bool    `json:"is_closed"`
}

// CreateRequest 创建问题请求
type CreateRequest struct {
	User  *auth.AuthUser
	Input Input
}

// UpdateRequest 更新问题请求，Partial 对应 PATCH
type UpdateRequest struct {
	User    *auth.AuthUser
	ID      string
	Input   Input
	Partial bool
}

// Service 问题业务逻辑
type Service struct {
	store    Store
	tags     *tag.Resolver
	observer Observer
	now      func() time.Time
}

// NewService 创建问题服务，observer 可为 nil
func NewService(store Store, tags *tag.Resolver, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		store:    store,
		tags:     tags,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// errQuestionNotFound 问题不存在
func errQuestionNotFound() error {
	return common.NotFound("no question matches the given query")
}

// Create 创建问题，所有者为当前用户
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Question, error) {
	if err := policy.Authorize(req.User, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(req.Input, false); err != nil {
		return nil, err
	}

	// 标签在问题事务之外解析
	tags, err := s.tags.Resolve(ctx, req.Input.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now()
	q := &model.Question{
		ID:          common.GenerateID("q"),
		Owner:       req.User.ID,
		Title:       *req.Input.Title,
		Description: *req.Input.Description,
		CreatedAt:   now,
		PublishedAt: now,
	}
	if req.Input.IsClosed != nil {
		q.IsClosed = *req.Input.IsClosed
	}
	if err := s.store.CreateQuestion(ctx, q, tags); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.observer.QuestionCreated()
	return q, nil
}

// Get 获取问题
func (s *Service) Get(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q == nil {
		return nil, errQuestionNotFound()
	}
	return q, nil
}

// List 分页列出问题
func (s *Service) List(ctx context.Context, page common.PageParams) ([]*model.Question, int, error) {
	items, total, err := s.store.ListQuestions(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	return items, total, nil
}

// Answers 分页列出问题下的回答；问题不存在时返回空页
func (s *Service) Answers(ctx context.Context, questionID string, page common.PageParams) ([]*model.Answer, int, error) {
	items, total, err := s.store.ListAnswersByQuestion(ctx, questionID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}
	return items, total, nil
}

// Authorize 加载问题并校验 user 对其执行 action 的权限
//
// 匿名请求先于资源查询返回 401，资源不存在返回 404，非所有者返回 403
func (s *Service) Authorize(ctx context.Context, user *auth.AuthUser, action policy.Action, id string) (*model.Question, error) {
	if user == nil && !action.Safe() {
		return nil, common.Unauthenticated("")
	}
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, action, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update 更新问题（PUT/PATCH），tags 提供时整体替换
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*model.Question, error) {
	action := policy.ActionUpdate
	if req.Partial {
		action = policy.ActionPartialUpdate
	}
	q, err := s.Authorize(ctx, req.User, action, req.ID)
	if err != nil {
		return nil, err
	}
	in := req.Input
	// PATCH 提交空标签列表时保留原有标签
	if req.Partial && len(in.Tags) == 0 {
		in.Tags = nil
	}
	if err := common.ValidateStruct(in, req.Partial); err != nil {
		return nil, err
	}

	if in.Title != nil {
		q.Title = *in.Title
	}
	if in.Description != nil {
		q.Description = *in.Description
	}
	if in.IsClosed != nil {
		q.IsClosed = *in.IsClosed
	}

	var tags []*model.Tag
	if in.Tags != nil {
		if tags, err = s.tags.Resolve(ctx, in.Tags); err != nil {
			return nil, err
		}
	}

	q.PublishedAt = s.now()
	if err := s.store.UpdateQuestion(ctx, q, tags); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errQuestionNotFound()
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete 删除问题，级联删除其回答
func (s *Service) Delete(ctx context.Context, user *auth.AuthUser, id string) error {
	if _, err := s.Authorize(ctx, user, policy.ActionDestroy, id); err != nil {
		return err
	}
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errQuestionNotFound()
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}
