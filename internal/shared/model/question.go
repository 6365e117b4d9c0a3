// Package model 定义核心数据模型
//
// question.go 包含问答相关的数据模型定义：
//   - Tag：标签（共享词表，按名称唯一）
//   - Question：问题
//   - Answer：回答
package model

import "time"

// TagNameMaxLength 标签名称最大长度
const TagNameMaxLength = 50

// QuestionTitleMaxLength 问题标题最大长度
const QuestionTitleMaxLength = 2000

// ============================================================================
// Tag - 标签
// ============================================================================

// Tag 标签
//
// 标签由问题写入时按名称自动创建，只增不删，被多个问题共享
type Tag struct {
	ID        string    `json:"id" bson:"_id" db:"id"`
	Name      string    `json:"name" bson:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// ============================================================================
// Question - 问题
// ============================================================================

// Question 问题
//
// Tags 只保存标签名称，序列化时始终是字符串列表；顺序与写入时一致
type Question struct {
	ID          string    `json:"id" bson:"_id" db:"id"`
	Owner       string    `json:"owner" bson:"owner_id" db:"owner_id"` // 创建后不可变
	Title       string    `json:"title" bson:"title" db:"title"`
	Description string    `json:"description" bson:"description" db:"description"`
	Tags        []string  `json:"tags" bson:"tags" db:"-"`
	IsClosed    bool      `json:"is_closed" bson:"is_closed" db:"is_closed"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	PublishedAt time.Time `json:"published_at" bson:"published_at" db:"published_at"` // 每次保存时刷新
}

// OwnerID 返回问题所有者
func (q *Question) OwnerID() string {
	return q.Owner
}

// ============================================================================
// Answer - 回答
// ============================================================================

// Answer 回答
//
// IsCorrect 只能通过 mark_as_correct 流程置为 true，普通更新不可写
type Answer struct {
	ID          string    `json:"id" bson:"_id" db:"id"`
	Question    string    `json:"question" bson:"question_id" db:"question_id"` // 所属问题，不可变
	Owner       string    `json:"owner" bson:"owner_id" db:"owner_id"`
	Description string    `json:"description" bson:"description" db:"description"`
	IsCorrect   bool      `json:"is_correct" bson:"is_correct" db:"is_correct"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	PublishedAt time.Time `json:"published_at" bson:"published_at" db:"published_at"`
}

// OwnerID 返回回答所有者
func (a *Answer) OwnerID() string {
	return a.Owner
}
