// Package common HTTP 层公共设施
//
//   - errors.go: 错误分类与状态码映射
//   - response.go: JSON 响应写入
//   - schema.go: 基于 OpenAPI 文档的请求体校验
//   - page.go: limit/offset 分页
//   - id.go: 资源 ID 生成
package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind 错误类别
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// NonFieldErrors 不属于具体字段的校验错误键
const NonFieldErrors = "non_field_errors"

// Status 返回错误类别对应的 HTTP 状态码
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error 可直接映射为 HTTP 响应的业务错误
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string // 字段级错误，仅 Validation 使用
	Err     error               // 内部原因，不会写入响应
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " [%s: %s]", k, strings.Join(e.Fields[k], "; "))
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status HTTP 状态码
func (e *Error) Status() int {
	return e.Kind.Status()
}

// ============================================================================
// 构造函数
// ============================================================================

// Validation 字段校验失败
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// FieldError 单个字段的校验失败
func FieldError(field, message string) *Error {
	return Validation(map[string][]string{field: {message}})
}

// BadRequest 请求语义错误
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Unauthenticated 未认证
func Unauthenticated(message string) *Error {
	if message == "" {
		message = "authentication credentials were not provided"
	}
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden 无权限
func Forbidden(message string) *Error {
	if message == "" {
		message = "you do not have permission to perform this action"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound 资源不存在
func NotFound(message string) *Error {
	if message == "" {
		message = "not found"
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal 内部错误，err 只记录日志
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// ============================================================================
// 判定
// ============================================================================

// AsError 提取 *Error，非业务错误包装为 Internal
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind 判断 err 是否为指定类别的业务错误
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// FieldErrors 用于逐字段累积校验错误
type FieldErrors map[string][]string

// Add 追加一条字段错误
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Err 无错误时返回 nil
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f)
}
