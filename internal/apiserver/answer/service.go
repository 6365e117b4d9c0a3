// Package answer 回答领域：回答的增删改查与 mark_as_correct 流程
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/policy"
	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
)

// Store 回答领域所需的存储接口
type Store interface {
	storage.AnswerStore
	GetQuestion(ctx context.Context, id string) (*model.Question, error)
}

// Observer 回答事件回调（指标采集）
type Observer interface {
	AnswerCreated()
	AnswerMarkedCorrect()
}

type nopObserver struct{}

func (nopObserver) AnswerCreated()       {}
func (nopObserver) AnswerMarkedCorrect() {}

// Input 回答请求体
//
// owner 与 is_correct 为只读字段，不在请求体中接收
type Input struct {
	Question    *string `json:"question" validate:"required,min=1"`
	Description *string `json:"description" validate:"required,min=1"`
}

// MarkCorrectInput mark_as_correct 请求体
type MarkCorrectInput struct {
	Question string `json:"question"`
}

// CreateRequest 创建回答请求
type CreateRequest struct {
	User  *auth.AuthUser
	Input Input
}

// UpdateRequest 更新回答请求，Partial 对应 PATCH
type UpdateRequest struct {
	User    *auth.AuthUser
	ID      string
	Input   Input
	Partial bool
}

// MarkCorrectRequest 标记正确回答请求
type MarkCorrectRequest struct {
	User     *auth.AuthUser
	AnswerID string
	Input    MarkCorrectInput
}

// Service 回答业务逻辑
type Service struct {
	store    Store
	observer Observer
	now      func() time.Time
}

// NewService 创建回答服务，observer 可为 nil
func NewService(store Store, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		store:    store,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func errAnswerNotFound() error {
	return common.NotFound("no answer matches the given query")
}

func errQuestionNotFound() error {
	return common.NotFound("no question matches the given query")
}

// Create 创建回答，所有者强制为当前用户
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Answer, error) {
	if err := policy.Authorize(req.User, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(req.Input, false); err != nil {
		return nil, err
	}

	q, err := s.store.GetQuestion(ctx, *req.Input.Question)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q == nil {
		return nil, errQuestionNotFound()
	}

	now := s.now()
	a := &model.Answer{
		ID:          common.GenerateID("ans"),
		Question:    q.ID,
		Owner:       req.User.ID,
		Description: *req.Input.Description,
		CreatedAt:   now,
		PublishedAt: now,
	}
	if err := s.store.CreateAnswer(ctx, a); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	s.observer.AnswerCreated()
	return a, nil
}

// Get 获取回答
func (s *Service) Get(ctx context.Context, id string) (*model.Answer, error) {
	a, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	if a == nil {
		return nil, errAnswerNotFound()
	}
	return a, nil
}

// List 分页列出全部回答
func (s *Service) List(ctx context.Context, page common.PageParams) ([]*model.Answer, int, error) {
	items, total, err := s.store.ListAnswers(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}
	return items, total, nil
}

// Authorize 加载回答并校验 user 对其执行 action 的权限
func (s *Service) Authorize(ctx context.Context, user *auth.AuthUser, action policy.Action, id string) (*model.Answer, error) {
	if user == nil && !action.Safe() {
		return nil, common.Unauthenticated("")
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, action, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 更新回答内容；所属问题不可变更
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*model.Answer, error) {
	action := policy.ActionUpdate
	if req.Partial {
		action = policy.ActionPartialUpdate
	}
	a, err := s.Authorize(ctx, req.User, action, req.ID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateStruct(req.Input, req.Partial); err != nil {
		return nil, err
	}
	if req.Input.Question != nil && *req.Input.Question != a.Question {
		return nil, common.FieldError("question", "the question of an answer cannot be changed")
	}

	if req.Input.Description != nil {
		a.Description = *req.Input.Description
	}
	a.PublishedAt = s.now()
	if err := s.store.UpdateAnswer(ctx, a); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errAnswerNotFound()
		}
		return nil, fmt.Errorf("update answer: %w", err)
	}
	return a, nil
}

// Delete 删除回答
func (s *Service) Delete(ctx context.Context, user *auth.AuthUser, id string) error {
	if _, err := s.Authorize(ctx, user, policy.ActionDestroy, id); err != nil {
		return err
	}
	if err := s.store.DeleteAnswer(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errAnswerNotFound()
		}
		return fmt.Errorf("delete answer: %w", err)
	}
	return nil
}

// MarkCorrect 问题所有者将问题下的某个回答标记为正确
//
// 校验顺序：question 字段 -> 问题存在 -> 调用者是问题所有者 -> 回答存在且属于该问题。
// 只做 false -> true 的单向变更，不影响同一问题下的其他回答
func (s *Service) MarkCorrect(ctx context.Context, req MarkCorrectRequest) (*model.Answer, error) {
	if err := policy.Authorize(req.User, policy.ActionMarkCorrect, nil); err != nil {
		return nil, err
	}
	questionID := req.Input.Question
	if questionID == "" {
		return nil, common.BadRequest("question field is required")
	}

	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q == nil {
		return nil, errQuestionNotFound()
	}
	if q.OwnerID() != req.User.ID {
		return nil, common.BadRequest("you aren't the owner of the specified question")
	}

	a, err := s.Get(ctx, req.AnswerID)
	if err != nil {
		return nil, err
	}
	if a.Question != q.ID {
		return nil, common.BadRequest("this answer isn't related to this specific question")
	}

	at := s.now()
	if err := s.store.MarkAnswerCorrect(ctx, a.ID, at); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errAnswerNotFound()
		}
		return nil, fmt.Errorf("mark answer correct: %w", err)
	}
	a.IsCorrect = true
	a.PublishedAt = at
	s.observer.AnswerMarkedCorrect()
	return a, nil
}
