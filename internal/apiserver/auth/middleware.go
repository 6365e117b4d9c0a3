package auth

import (
	"errors"
	"net/http"
	"strings"

	"qa-server/internal/apiserver/common"
	"qa-server/pkg/logging"
)

// 接受的 Authorization 方案（不区分大小写）
var authSchemes = []string{"bearer", "token"}

// extractToken 解析 Authorization 头
// 返回 ok=false 表示头存在但格式非法
func extractToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	for _, scheme := range authSchemes {
		if strings.EqualFold(parts[0], scheme) {
			return token, true
		}
	}
	return "", false
}

// Middleware 创建可选认证中间件
//
// 无 Authorization 头的请求以匿名身份放行，是否需要登录由各处理器决定；
// 携带了令牌但令牌无效时直接返回 401
func Middleware(a *Authenticator, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := extractToken(header)
			if !ok {
				common.WriteError(w, r, logger, common.Unauthenticated("invalid authorization header"))
				return
			}

			user, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					common.WriteError(w, r, logger, common.Unauthenticated("invalid or expired token"))
					return
				}
				common.WriteError(w, r, logger, err)
				return
			}

			ctx := WithAuthUser(r.Context(), user)
			ctx = logging.ContextWithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser 要求已登录的路由包装
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r.Context()) == nil {
			common.WriteError(w, r, nil, common.Unauthenticated(""))
			return
		}
		next(w, r)
	}
}
