package tag

import (
	"net/http"

	"qa-server/internal/apiserver/common"
	"qa-server/internal/shared/storage"
	"qa-server/pkg/logging"
)

// Handler 标签词表 HTTP 处理器
type Handler struct {
	store  storage.TagStore
	logger *logging.Logger
}

// NewHandler 创建标签处理器
func NewHandler(store storage.TagStore, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes 注册标签路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /tag", h.List)
}

// List 返回全部标签名
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		common.WriteError(w, r, h.logger, err)
		return
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	common.WriteJSON(w, http.StatusOK, names)
}
