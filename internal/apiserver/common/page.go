package common

import (
	"net/http"
	"strconv"
)

// Paging 分页参数约束
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPaging 默认 20 条，最多 100 条
func DefaultPaging() Paging {
	return Paging{DefaultLimit: 20, MaxLimit: 100}
}

// PageParams 单次请求的分页参数
type PageParams struct {
	Limit  int
	Offset int
}

// Parse 从查询串读取 limit/offset
//
// 非法值回落到默认值，limit 超过上限时截断
func (p Paging) Parse(r *http.Request) PageParams {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = 20
	}
	if p.MaxLimit < p.DefaultLimit {
		p.MaxLimit = p.DefaultLimit
	}

	params := PageParams{Limit: p.DefaultLimit}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		params.Limit = v
	}
	if params.Limit > p.MaxLimit {
		params.Limit = p.MaxLimit
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		params.Offset = v
	}
	return params
}

// Page 分页响应
type Page[T any] struct {
	Count   int `json:"count"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Results []T `json:"results"`
}

// NewPage 构造分页响应，results 始终序列化为数组
func NewPage[T any](items []T, count int, params PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Count:   count,
		Limit:   params.Limit,
		Offset:  params.Offset,
		Results: items,
	}
}
