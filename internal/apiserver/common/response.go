package common

import (
	"encoding/json"
	"net/http"

	"qa-server/pkg/logging"
)

// errorBody 错误响应体
type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	json.NewEncoder(w).Encode(data)
}

// WriteNoContent 写入 204
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError 将错误写入响应
//
// 业务错误按类别映射状态码；其余错误一律 500，原因只写日志
func WriteError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	e := AsError(err)
	if e.Kind == KindInternal && logger != nil {
		logger.WithContext(r.Context()).WithError(err).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	WriteJSON(w, e.Status(), errorBody{Error: e.Message, Fields: e.Fields})
}
