package account

import (
	"net/http"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/pkg/logging"
)

// Handler 账户 HTTP 处理器
type Handler struct {
	svc     *Service
	schemas *common.Schemas
	logger  *logging.Logger
}

// NewHandler 创建账户处理器
func NewHandler(svc *Service, schemas *common.Schemas, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, schemas: schemas, logger: logger}
}

// RegisterRoutes 注册账户路由
//
// /user 只操作当前登录用户，路径中不带 id
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /user", h.Register)
	mux.HandleFunc("GET /user", auth.RequireUser(h.Me))
	mux.HandleFunc("PUT /user", auth.RequireUser(h.Update))
	mux.HandleFunc("PATCH /user", auth.RequireUser(h.PartialUpdate))
	mux.HandleFunc("DELETE /user", auth.RequireUser(h.Delete))
	mux.HandleFunc("POST /user/login", h.Login)
	mux.HandleFunc("POST /user/logout", auth.RequireUser(h.Logout))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	common.WriteError(w, r, h.logger, err)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeBody(r, h.schemas, "UserCreate", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context(), auth.GetAuthUser(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	schema := "UserUpdate"
	if partial {
		schema = "UserPatch"
	}
	var in Input
	if err := common.DecodeBody(r, h.schemas, schema, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.svc.Update(r.Context(), UpdateRequest{
		User:    auth.GetAuthUser(r.Context()),
		Input:   in,
		Partial: partial,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.GetAuthUser(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteNoContent(w)
}

// Login 路由: POST /user/login，返回 {"token": "..."}
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := common.DecodeBody(r, h.schemas, "Login", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.svc.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout 路由: POST /user/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), auth.GetAuthUser(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteNoContent(w)
}
