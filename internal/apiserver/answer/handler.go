package answer

import (
	"net/http"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/policy"
	"qa-server/pkg/logging"
)

// Handler 回答领域 HTTP 处理器
type Handler struct {
	svc     *Service
	schemas *common.Schemas
	paging  common.Paging
	logger  *logging.Logger
}

// NewHandler 创建回答处理器
func NewHandler(svc *Service, schemas *common.Schemas, paging common.Paging, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, schemas: schemas, paging: paging, logger: logger}
}

// RegisterRoutes 注册回答相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /answer", h.List)
	mux.HandleFunc("POST /answer", h.Create)
	mux.HandleFunc("GET /answer/{id}", h.Get)
	mux.HandleFunc("PUT /answer/{id}", h.Update)
	mux.HandleFunc("PATCH /answer/{id}", h.PartialUpdate)
	mux.HandleFunc("DELETE /answer/{id}", h.Delete)
	mux.HandleFunc("POST /answer/{id}/mark_as_correct", h.MarkCorrect)
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
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if err := policy.Authorize(user, policy.ActionCreate, nil); err != nil {
		h.fail(w, r, err)
		return
	}

	var in Input
	if err := common.DecodeBody(r, h.schemas, "AnswerCreate", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.svc.Create(r.Context(), CreateRequest{User: user, Input: in})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	user := auth.GetAuthUser(r.Context())
	id := r.PathValue("id")

	action, schema := policy.ActionUpdate, "AnswerCreate"
	if partial {
		action, schema = policy.ActionPartialUpdate, "AnswerPatch"
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
	a, err := h.svc.Update(r.Context(), UpdateRequest{User: user, ID: id, Input: in, Partial: partial})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.GetAuthUser(r.Context()), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteNoContent(w)
}

// MarkCorrect 路由: POST /answer/{id}/mark_as_correct
func (h *Handler) MarkCorrect(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if err := policy.Authorize(user, policy.ActionMarkCorrect, nil); err != nil {
		h.fail(w, r, err)
		return
	}

	var in MarkCorrectInput
	if err := common.DecodeBody(r, h.schemas, "MarkCorrect", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.svc.MarkCorrect(r.Context(), MarkCorrectRequest{User: user, AnswerID: r.PathValue("id"), Input: in})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, a)
}
