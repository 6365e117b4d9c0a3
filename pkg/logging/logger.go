// Package logging 结构化日志
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIDKey    ContextKey = "user_id"
)

// Logger 结构化日志器
type Logger struct {
	*slog.Logger
	component string
	base      *slog.Logger // 未附加 component 的原始日志器
}

// Config 日志配置
type Config struct {
	Level     string    `json:"level"`
	Format    string    `json:"format"` // json or text
	Output    string    `json:"output"` // stdout, stderr, or file path
	Writer    io.Writer `json:"-"`      // 非空时优先于 Output（测试用）
	Component string    `json:"component"`
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New 创建新的日志器
func New(cfg Config) *Logger {
	level := ParseLevel(cfg.Level)

	output := cfg.Writer
	if output == nil {
		switch cfg.Output {
		case "stdout", "":
			output = os.Stdout
		case "stderr":
			output = os.Stderr
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				output = os.Stdout
			} else {
				output = f
			}
		}
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	base := slog.New(handler)
	logger := base
	if cfg.Component != "" {
		logger = base.With(slog.String("component", cfg.Component))
	}
	return &Logger{
		Logger:    logger,
		component: cfg.Component,
		base:      base,
	}
}

// Default 创建默认日志器
func Default(component string) *Logger {
	return New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    "stdout",
		Component: component,
	})
}

// Discard 丢弃所有输出（测试用）
func Discard() *Logger {
	return New(Config{Writer: io.Discard})
}

// Named 派生子组件日志器，共享同一个 handler
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		Logger:    l.base.With(slog.String("component", component)),
		component: component,
		base:      l.base,
	}
}

// Component 返回组件名
func (l *Logger) Component() string {
	return l.component
}

// ContextWithRequestID 写入请求 ID
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// ContextWithUserID 写入当前用户 ID
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithContext 从上下文提取请求信息
func (l *Logger) WithContext(ctx context.Context) *Logger {
	var attrs []any
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok && userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{
		Logger:    l.Logger.With(attrs...),
		component: l.component,
		base:      l.base,
	}
}

// WithError 添加错误信息
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{
		Logger:    l.Logger.With(slog.String("error", err.Error())),
		component: l.component,
		base:      l.base,
	}
}

// WithDuration 添加持续时间
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger:    l.Logger.With(slog.Float64("duration_ms", float64(d.Milliseconds()))),
		component: l.component,
		base:      l.base,
	}
}

// WithField 添加单个字段
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(slog.Any(key, value)),
		component: l.component,
		base:      l.base,
	}
}

// HTTPRequestLog HTTP 请求日志
// 5xx 记为 Error，4xx 记为 Warn，其余为 Info
func (l *Logger) HTTPRequestLog(method, path string, status int, duration time.Duration, clientIP string) {
	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
		slog.String("client_ip", clientIP),
	}
	switch {
	case status >= 500:
		l.Logger.Error("HTTP request", attrs...)
	case status >= 400:
		l.Logger.Warn("HTTP request", attrs...)
	default:
		l.Logger.Info("HTTP request", attrs...)
	}
}
