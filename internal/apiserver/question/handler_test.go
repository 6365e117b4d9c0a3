package question

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/pkg/logging"
)

// newTestMux 通过 X-Test-User 头模拟已登录用户
func newTestMux(t *testing.T, f *fixture) http.Handler {
	t.Helper()
	schemas, err := common.EmbeddedSchemas(context.Background())
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler(f.svc, schemas, common.DefaultPaging(), logging.Discard()).RegisterRoutes(mux)

	users := map[string]*auth.AuthUser{f.alice.ID: f.alice, f.bob.ID: f.bob}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := users[r.Header.Get("X-Test-User")]; ok {
			r = r.WithContext(auth.WithAuthUser(r.Context(), u))
		}
		mux.ServeHTTP(w, r)
	})
}

func do(h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAndRetrieve(t *testing.T) {
	f := newFixture(t)
	h := newTestMux(t, f)

	rec := do(h, http.MethodPost, "/question", f.alice.ID,
		`{"title":"How?","description":"Details","tags":["t1","t2"],"owner":"usr-bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, f.alice.ID, created["owner"], "client-supplied owner is ignored")
	assert.Equal(t, []interface{}{"t1", "t2"}, created["tags"])

	rec = do(h, http.MethodGet, "/question/"+created["id"].(string), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/question", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Count   int                      `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Count)
}

func TestHandler_CreateErrors(t *testing.T) {
	f := newFixture(t)
	h := newTestMux(t, f)

	rec := do(h, http.MethodPost, "/question", "", `{"title":"t","description":"d","tags":["x"]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/question", f.alice.ID, `{"title":"t"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "description")

	long := strings.Repeat("x", 51)
	rec = do(h, http.MethodPost, "/question", f.alice.ID, `{"title":"t","description":"d","tags":["`+long+`"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tags")
}

// TestHandler_ForbiddenBeforeValidation 非所有者即使请求体非法也先得到 403
func TestHandler_ForbiddenBeforeValidation(t *testing.T) {
	f := newFixture(t)
	h := newTestMux(t, f)
	q := f.createQuestion(t, f.alice, "q", "t1")
	path := "/question/" + q.ID

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPut, path, f.bob.ID, `{}`).Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPatch, path, f.bob.ID, `{"title":""}`).Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodDelete, path, f.bob.ID, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPatch, path, "", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPatch, "/question/q-nope", f.alice.ID, `{"title":"x"}`).Code)

	rec := do(h, http.MethodPatch, path, f.alice.ID, `{"title":"better"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "better")

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, path, f.alice.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, path, "", "").Code)
}

func TestHandler_PatchEmptyTags(t *testing.T) {
	f := newFixture(t)
	h := newTestMux(t, f)
	q := f.createQuestion(t, f.alice, "q", "t1", "t2")
	path := "/question/" + q.ID

	rec := do(h, http.MethodPatch, path, f.alice.ID, `{"tags":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Tags []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"t1", "t2"}, out.Tags)

	rec = do(h, http.MethodPut, path, f.alice.ID, `{"title":"q","description":"d","tags":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tags")
}

func TestHandler_Answers(t *testing.T) {
	f := newFixture(t)
	h := newTestMux(t, f)
	q := f.createQuestion(t, f.alice, "q", "t1")

	rec := do(h, http.MethodGet, "/question/"+q.ID+"/answers?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"limit":5,"offset":0,"results":[]}`, rec.Body.String())
}
