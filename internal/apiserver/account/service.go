// Package account 账户领域：注册、资料维护、注销账户、登录与登出
package account

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

// msgInvalidCredentials 登录失败的统一提示，不区分用户不存在和密码错误
const msgInvalidCredentials = "unable to log in with provided credentials"

// Input 账户请求体；password/password2 只写，不会出现在响应中
type Input struct {
	Username  *string `json:"username" validate:"required,min=1,max=150,username"`
	Email     *string `json:"email" validate:"required,min=1,max=254,email"`
	FirstName *string `json:"first_name" validate:"required,min=1,max=150"`
	LastName  *string `json:"last_name" validate:"required,min=1,max=150"`
	Password  *string `json:"password"`
	Password2 *string `json:"password2"`
}

// UpdateRequest 更新当前用户资料，Partial 对应 PATCH
type UpdateRequest struct {
	User    *auth.AuthUser
	Input   Input
	Partial bool
}

// LoginInput 登录请求体
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service 账户业务逻辑
type Service struct {
	store      storage.UserStore
	auth       *auth.Authenticator
	validators []PasswordValidator
	now        func() time.Time
}

// NewService 创建账户服务，validators 为 nil 时使用默认校验链
func NewService(store storage.UserStore, authn *auth.Authenticator, validators []PasswordValidator) *Service {
	if validators == nil {
		validators = DefaultPasswordValidators()
	}
	return &Service{
		store:      store,
		auth:       authn,
		validators: validators,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// profileErrors 按 validate 标签校验资料字段，partial 为 true 时不要求必填
//
// 返回的 FieldErrors 供调用方继续追加密码、用户名占用等错误
func profileErrors(in Input, partial bool) (common.FieldErrors, error) {
	err := common.ValidateStruct(in, partial)
	if err == nil {
		return common.FieldErrors{}, nil
	}
	e := common.AsError(err)
	if e.Kind != common.KindValidation {
		return nil, err
	}
	return common.FieldErrors(e.Fields), nil
}

// apply 将请求体中提供的字段写入 user
func apply(user *model.User, in Input) {
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
}

// newPassword 处理 password/password2
//
// 未提供 password 时返回 ok=false，保持原密码不变；
// 提供了 password 则必须提供一致的 password2，并通过强度校验
func (s *Service) newPassword(in Input, candidate *model.User) (string, bool, error) {
	if in.Password == nil || *in.Password == "" {
		return "", false, nil
	}
	if in.Password2 == nil || *in.Password2 == "" {
		return "", false, common.FieldError("password2", "must provide password2")
	}
	if *in.Password != *in.Password2 {
		return "", false, common.FieldError("password", "the two password fields didn't match")
	}
	if problems := ValidatePassword(*in.Password, candidate, s.validators); len(problems) > 0 {
		return "", false, common.Validation(map[string][]string{"password": problems})
	}
	return *in.Password, true, nil
}

// checkUsername 用户名被其他用户占用时记录字段错误
func (s *Service) checkUsername(ctx context.Context, fields common.FieldErrors, username, selfID string) error {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user by username: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		fields.Add("username", "a user with that username already exists")
	}
	return nil
}

func errUsernameTaken() error {
	return common.FieldError("username", "a user with that username already exists")
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, in Input) (*model.User, error) {
	fields, err := profileErrors(in, false)
	if err != nil {
		return nil, err
	}
	if in.Password == nil || *in.Password == "" {
		fields.Add("password", "this field is required")
	}
	if in.Username != nil && fields["username"] == nil {
		if err := s.checkUsername(ctx, fields, *in.Username, ""); err != nil {
			return nil, err
		}
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:        common.GenerateID("usr"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(user, in)

	password, _, err := s.newPassword(in, user)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash, err = auth.HashPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, errUsernameTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Me 返回当前用户
func (s *Service) Me(ctx context.Context, principal *auth.AuthUser) (*model.User, error) {
	if principal == nil {
		return nil, common.Unauthenticated("")
	}
	user, err := s.store.GetUserByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, common.Unauthenticated("user no longer exists")
	}
	return user, nil
}

// Update 更新当前用户资料；提供 password 时一并修改密码，不校验旧密码
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*model.User, error) {
	user, err := s.Me(ctx, req.User)
	if err != nil {
		return nil, err
	}
	action := policy.ActionUpdate
	if req.Partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(req.User, action, user); err != nil {
		return nil, err
	}

	fields, err := profileErrors(req.Input, req.Partial)
	if err != nil {
		return nil, err
	}
	if req.Input.Username != nil && fields["username"] == nil && *req.Input.Username != user.Username {
		if err := s.checkUsername(ctx, fields, *req.Input.Username, user.ID); err != nil {
			return nil, err
		}
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	apply(user, req.Input)
	password, changed, err := s.newPassword(req.Input, user)
	if err != nil {
		return nil, err
	}
	if changed {
		if user.PasswordHash, err = auth.HashPassword(password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	user.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nil, errUsernameTaken()
		case errors.Is(err, storage.ErrNotFound):
			return nil, common.Unauthenticated("user no longer exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete 删除当前用户，级联删除其问题、回答和令牌
func (s *Service) Delete(ctx context.Context, principal *auth.AuthUser) error {
	user, err := s.Me(ctx, principal)
	if err != nil {
		return err
	}
	if err := policy.Authorize(principal, policy.ActionDestroy, user); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}
	// 令牌登记表可能不在同一个库中（Redis）
	if err := s.auth.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// Login 校验用户名密码并签发令牌
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return "", common.BadRequest(msgInvalidCredentials)
	}
	user, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return "", fmt.Errorf("get user by username: %w", err)
	}
	if user == nil || !auth.CheckPassword(in.Password, user.PasswordHash) {
		return "", common.BadRequest(msgInvalidCredentials)
	}
	token, err := s.auth.Issue(ctx, user)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout 吊销当前请求使用的令牌
func (s *Service) Logout(ctx context.Context, principal *auth.AuthUser) error {
	if principal == nil {
		return common.Unauthenticated("")
	}
	if err := s.auth.Revoke(ctx, principal.TokenID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
