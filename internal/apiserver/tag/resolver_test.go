package tag

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-server/internal/apiserver/common"
	"qa-server/internal/shared/model"
	"qa-server/internal/shared/storage"
	sqlitedriver "qa-server/internal/shared/storage/driver/sqlite"
	"qa-server/internal/shared/storage/repository"
	"qa-server/pkg/logging"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

type countingObserver struct {
	created   atomic.Int32
	conflicts atomic.Int32
}

func (o *countingObserver) TagCreated()  { o.created.Add(1) }
func (o *countingObserver) TagConflict() { o.conflicts.Add(1) }

func tagNames(tags []*model.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// TestNormalize 测试标签名校验与去重
func TestNormalize(t *testing.T) {
	got, err := Normalize([]string{"go", " sql ", "go", "http"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql", "http"}, got)

	_, err = Normalize([]string{"ok", "  "})
	assert.True(t, common.IsKind(err, common.KindValidation))

	_, err = Normalize([]string{strings.Repeat("x", model.TagNameMaxLength+1)})
	assert.True(t, common.IsKind(err, common.KindValidation))

	got, err = Normalize([]string{strings.Repeat("界", model.TagNameMaxLength)})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

// TestResolve_CreatesMissing 测试不存在的标签按需创建、已存在的复用
func TestResolve_CreatesMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	obs := &countingObserver{}
	r := NewResolver(store, obs)

	first, err := r.Resolve(ctx, []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, tagNames(first))
	assert.EqualValues(t, 2, obs.created.Load())

	second, err := r.Resolve(ctx, []string{"t2", "t3", "t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3", "t1"}, tagNames(second))
	assert.Equal(t, first[1].ID, second[0].ID)
	assert.Equal(t, first[0].ID, second[2].ID)
	assert.EqualValues(t, 3, obs.created.Load())

	all, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// TestResolve_Concurrent 并发解析同一组标签名，每个名称只持久化一个标签
func TestResolve_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	r := NewResolver(store, nil)

	names := []string{"alpha", "beta", "gamma", "delta"}
	const workers = 8

	var wg sync.WaitGroup
	results := make([][]*model.Tag, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(ctx, names)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], len(names))
		for j := range names {
			assert.Equal(t, results[0][j].ID, results[i][j].ID)
		}
	}

	all, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(names))
}

// racingStore 模拟并发写入：第一次查询不到，插入时报唯一冲突，之后才能查到
type racingStore struct {
	mu        sync.Mutex
	tags      map[string]*model.Tag
	raceNames map[string]int // 剩余需要模拟冲突的次数
}

func (s *racingStore) GetTagByName(_ context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[name], nil
}

func (s *racingStore) CreateTag(_ context.Context, t *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceNames[t.Name] > 0 {
		s.raceNames[t.Name]--
		// 另一个写入者抢先完成
		s.tags[t.Name] = &model.Tag{ID: "tag-winner", Name: t.Name}
		return fmt.Errorf("%w: tags.name", storage.ErrDuplicate)
	}
	if _, ok := s.tags[t.Name]; ok {
		return storage.ErrDuplicate
	}
	s.tags[t.Name] = t
	return nil
}

func (s *racingStore) ListTags(context.Context) ([]*model.Tag, error) {
	return nil, nil
}

// TestResolve_RetriesOnDuplicate 插入冲突后重新查询并返回胜出者的标签
func TestResolve_RetriesOnDuplicate(t *testing.T) {
	store := &racingStore{
		tags:      map[string]*model.Tag{},
		raceNames: map[string]int{"go": 1},
	}
	obs := &countingObserver{}
	r := NewResolver(store, obs)

	tags, err := r.Resolve(context.Background(), []string{"go", "sql"})
	require.NoError(t, err)
	assert.Equal(t, "tag-winner", tags[0].ID)
	assert.Equal(t, "sql", tags[1].Name)
	assert.EqualValues(t, 1, obs.conflicts.Load())
	assert.EqualValues(t, 1, obs.created.Load())
}

// flakyStore 每次插入都冲突但始终查不到
type flakyStore struct{ racingStore }

func (s *flakyStore) CreateTag(context.Context, *model.Tag) error {
	return storage.ErrDuplicate
}

func TestResolve_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &flakyStore{racingStore{tags: map[string]*model.Tag{}}}
	obs := &countingObserver{}
	r := NewResolver(store, obs)

	_, err := r.Resolve(context.Background(), []string{"go"})
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.EqualValues(t, maxAttempts, obs.conflicts.Load())
}

func TestHandler_List(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := NewResolver(store, nil).Resolve(ctx, []string{"go", "sql"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(store, logging.Discard()).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tag", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["go","sql"]`, rec.Body.String())
}
