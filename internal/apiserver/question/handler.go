package question

import (
	"net/http"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/policy"
	"qa-server/internal/shared/model"
	"qa-server/pkg/logging"
)

// Handler 问题领域 HTTP 处理器
type Handler struct {
	svc     *Service
	schemas *common.Schemas
	paging  common.Paging
	logger  *logging.Logger
}

// NewHandler 创建问题处理器，schemas 为 nil 时跳过请求体 Schema 校验
func NewHandler(svc *Service, schemas *common.Schemas, paging common.Paging, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, schemas: schemas, paging: paging, logger: logger}
}

// RegisterRoutes 注册问题相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /question", h.List)
	mux.HandleFunc("POST /question", h.Create)
	mux.HandleFunc("GET /question/{id}", h.Get)
	mux.HandleFunc("PUT /question/{id}", h.Update)
	mux.HandleFunc("PATCH /question/{id}", h.PartialUpdate)
	mux.HandleFunc("DELETE /question/{id}", h.Delete)
	mux.HandleFunc("GET /question/{id}/answers", h.Answers)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	common.WriteError(w, r, h.logger, err)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := h.paging.Parse(r)
	items, total, err := h.svc.List(r.Context(), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.NewPage(items, total, page))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if err := policy.Authorize(user, policy.ActionCreate, nil); err != nil {
		h.fail(w, r, err)
		return
	}

	var in Input
	if err := common.DecodeBody(r, h.schemas, "QuestionCreate", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.svc.Create(r.Context(), CreateRequest{User: user, Input: in})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// update 权限校验先于请求体校验
func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	action, schema := policy.ActionUpdate, "QuestionCreate"
	if partial {
		action, schema = policy.ActionPartialUpdate, "QuestionPatch"
	}
	if _, err := h.svc.Authorize(r.Context(), user, action, id); err != nil {
		h.fail(w, r, err)
		return
	}

	var in Input
	if err := common.DecodeBody(r, h.schemas, schema, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.svc.Update(r.Context(), UpdateRequest{User: user, ID: id, Input: in, Partial: partial})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.GetAuthUser(r.Context()), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteNoContent(w)
}

// Answers 列出问题下的回答
func (h *Handler) Answers(w http.ResponseWriter, r *http.Request) {
	page := h.paging.Parse(r)
	items, total, err := h.svc.Answers(r.Context(), r.PathValue("id"), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.NewPage[*model.Answer](items, total, page))
}
