// Package tag 标签领域：按名称 get-or-create 标签，以及标签词表查询
package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"qa-server/internal/apiserver/common"
	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
)

// maxAttempts 单个标签 查询-插入 的最大轮数
const maxAttempts = 3

// ErrTooManyAttempts 并发冲突超过重试上限
var ErrTooManyAttempts = errors.New("tag resolve: too many attempts")

// Observer 标签解析事件回调（指标采集）
type Observer interface {
	TagCreated()
	TagConflict()
}

type nopObserver struct{}

func (nopObserver) TagCreated()  {}
func (nopObserver) TagConflict() {}

// Resolver 将标签名列表解析为标签实体，不存在的按名称创建
//
// 唯一性由存储层的唯一索引保证：插入冲突时重新查询，而不是依赖事先的存在性检查
type Resolver struct {
	store    storage.TagStore
	observer Observer
	now      func() time.Time
}

// NewResolver 创建标签解析器，observer 可为 nil
func NewResolver(store storage.TagStore, observer Observer) *Resolver {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Resolver{
		store:    store,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Normalize 校验并去重标签名，保持首次出现的顺序
func Normalize(names []string) ([]string, error) {
	fields := common.FieldErrors{}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		switch {
		case name == "":
			fields.Add("tags", "tag name may not be blank")
			continue
		case utf8.RuneCountInString(name) > model.TagNameMaxLength:
			fields.Add("tags", fmt.Sprintf("ensure this field has no more than %d characters", model.TagNameMaxLength))
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve 返回与 names 一一对应（去重后）的标签，顺序与输入一致
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]*model.Tag, error) {
	distinct, err := Normalize(names)
	if err != nil {
		return nil, err
	}

	tags := make([]*model.Tag, 0, len(distinct))
	for _, name := range distinct {
		t, err := r.getOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func (r *Resolver) getOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		existing, err := r.store.GetTagByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("get tag %q: %w", name, err)
		}
		if existing != nil {
			return existing, nil
		}

		t := &model.Tag{
			ID:        common.GenerateID("tag"),
			Name:      name,
			CreatedAt: r.now(),
		}
		err = r.store.CreateTag(ctx, t)
		if err == nil {
			r.observer.TagCreated()
			return t, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("create tag %q: %w", name, err)
		}
		// 并发请求已创建同名标签，重新查询
		r.observer.TagConflict()
	}
	return nil, fmt.Errorf("%w: %q", ErrTooManyAttempts, name)
}
