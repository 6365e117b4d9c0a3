// Package policy 资源所有权授权规则
//
// 只读动作对所有人开放；create/mark_as_correct 需要登录；
// update/partial_update/destroy 只允许资源所有者执行
package policy

import (
	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
)

// Action 处理器动作
type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionAnswers       Action = "answers"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionMarkCorrect   Action = "mark_as_correct"
)

// Safe 是否为只读动作
func (a Action) Safe() bool {
	switch a {
	case ActionList, ActionRetrieve, ActionAnswers:
		return true
	}
	return false
}

// RequiresOwner 是否要求调用者为资源所有者
func (a Action) RequiresOwner() bool {
	switch a {
	case ActionUpdate, ActionPartialUpdate, ActionDestroy:
		return true
	}
	return false
}

// Owned 带所有者的资源
type Owned interface {
	OwnerID() string
}

// Authorize 判定 user 能否对 resource 执行 action
//
// user 为 nil 表示匿名请求。需要所有者校验的动作必须传入已加载的资源
func Authorize(user *auth.AuthUser, action Action, resource Owned) error {
	if action.Safe() {
		return nil
	}
	if user == nil {
		return common.Unauthenticated("")
	}
	if !action.RequiresOwner() {
		return nil
	}
	if resource == nil || resource.OwnerID() != user.ID {
		return common.Forbidden("")
	}
	return nil
}

// IsAuthorized Authorize 的布尔形式
func IsAuthorized(user *auth.AuthUser, action Action, resource Owned) bool {
	return Authorize(user, action, resource) == nil
}
