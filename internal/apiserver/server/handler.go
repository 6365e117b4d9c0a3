// Package server 路由配置与核心基础设施
//
// 本文件装配各领域包的 HTTP 处理器，并串联公共中间件：
//   - corsMiddleware: 跨域
//   - requestLogMiddleware: 请求 ID 与访问日志
//   - Metrics.MetricsMiddleware: Prometheus 指标
//   - auth.Middleware: 解析令牌，写入认证主体
package server

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"qa-server/api"
	"qa-server/internal/apiserver/account"
	"qa-server/internal/apiserver/answer"
	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/question"
	"qa-server/internal/apiserver/tag"
	"qa-server/internal/shared/storage"
	"qa-server/pkg/logging"
)

// RequestIDHeader 请求 ID 头，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// Deps Handler 依赖
type Deps struct {
	Store   storage.PersistentStore
	Auth    *auth.Authenticator
	Schemas *common.Schemas // 为 nil 时跳过请求体 Schema 校验
	Paging  common.Paging
	Logger  *logging.Logger
	Metrics *Metrics

	// PasswordValidators 为 nil 时使用 account.DefaultPasswordValidators
	PasswordValidators []account.PasswordValidator
}

// Handler HTTP 请求处理器
type Handler struct {
	deps    Deps
	logger  *logging.Logger
	metrics *Metrics

	tags      *tag.Resolver
	questions *question.Service
	answers   *answer.Service
	accounts  *account.Service
}

// NewHandler 创建 HTTP 处理器
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Default("apiserver")
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics("qa", nil)
	}
	if deps.Paging.DefaultLimit <= 0 || deps.Paging.MaxLimit <= 0 {
		deps.Paging = common.DefaultPaging()
	}

	tags := tag.NewResolver(deps.Store, deps.Metrics)
	return &Handler{
		deps:      deps,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		tags:      tags,
		questions: question.NewService(deps.Store, tags, deps.Metrics),
		answers:   answer.NewService(deps.Store, deps.Metrics),
		accounts:  account.NewService(deps.Store, deps.Auth, deps.PasswordValidators),
	}
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 基础:
//   - GET /health        - 健康检查
//   - GET /metrics       - Prometheus 指标
//   - GET /openapi.yaml  - 接口文档
//
// 问题 (Question):
//   - GET    /question                - 列出问题
//   - POST   /question                - 创建问题
//   - GET    /question/{id}           - 获取问题
//   - PUT    /question/{id}           - 全量更新（仅所有者）
//   - PATCH  /question/{id}           - 部分更新（仅所有者）
//   - DELETE /question/{id}           - 删除（仅所有者）
//   - GET    /question/{id}/answers   - 列出问题下的回答
//
// 回答 (Answer):
//   - GET    /answer                        - 列出回答
//   - POST   /answer                        - 创建回答
//   - GET    /answer/{id}                   - 获取回答
//   - PUT    /answer/{id}                   - 全量更新（仅所有者）
//   - PATCH  /answer/{id}                   - 部分更新（仅所有者）
//   - DELETE /answer/{id}                   - 删除（仅所有者）
//   - POST   /answer/{id}/mark_as_correct   - 由问题所有者标记为正确
//
// 标签 (Tag):
//   - GET    /tag                     - 列出标签词汇表
//
// 账户 (User)，只操作当前登录用户:
//   - POST   /user          - 注册
//   - GET    /user          - 当前用户
//   - PUT    /user          - 全量更新
//   - PATCH  /user          - 部分更新
//   - DELETE /user          - 注销账户
//   - POST   /user/login    - 登录，返回令牌
//   - POST   /user/logout   - 吊销当前令牌
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())
	mux.HandleFunc("GET /openapi.yaml", h.OpenAPI)

	tag.NewHandler(h.deps.Store, h.logger).RegisterRoutes(mux)
	question.NewHandler(h.questions, h.deps.Schemas, h.deps.Paging, h.logger).RegisterRoutes(mux)
	answer.NewHandler(h.answers, h.deps.Schemas, h.deps.Paging, h.logger).RegisterRoutes(mux)
	account.NewHandler(h.accounts, h.deps.Schemas, h.logger).RegisterRoutes(mux)

	// 中间件链（由外到内）：CORS → 访问日志 → 指标 → 认证
	var handler http.Handler = mux
	handler = auth.Middleware(h.deps.Auth, h.logger)(handler)
	handler = h.metrics.MetricsMiddleware(handler)
	handler = h.requestLogMiddleware(handler)
	handler = corsMiddleware(handler)
	return handler
}

// Health 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OpenAPI 路由: GET /openapi.yaml
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	data, err := api.Spec()
	if err != nil {
		common.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// requestLogMiddleware 分配请求 ID 并记录访问日志
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), requestID))

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		logger := h.logger.WithContext(r.Context())
		// X-Forwarded-For 由客户端控制，单独记录
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			logger = logger.WithField("forwarded_for", fwd)
		}
		logger.HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), clientIP(r))
	})
}

// clientIP 取连接对端地址
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// corsMiddleware CORS 中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
