package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics API Server 指标
//
// 同时实现 tag.Observer、question.Observer、answer.Observer，
// 业务层通过这些接口上报计数，不直接依赖 prometheus
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 业务指标
	QuestionsCreated     prometheus.Counter
	AnswersCreated       prometheus.Counter
	AnswersMarkedCorrect prometheus.Counter
	TagsCreated          prometheus.Counter
	TagResolveConflicts  prometheus.Counter
}

// NewMetrics 在独立的 Registry 上创建指标
// reg 为 nil 时新建一个，并注册 Go 运行时和进程指标
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		QuestionsCreated:     counter("questions_created_total", "Total questions created"),
		AnswersCreated:       counter("answers_created_total", "Total answers created"),
		AnswersMarkedCorrect: counter("answers_marked_correct_total", "Total answers marked as correct"),
		TagsCreated:          counter("tags_created_total", "Total tags added to the vocabulary"),
		TagResolveConflicts:  counter("tag_resolve_conflicts_total", "Tag creations lost to a concurrent writer and retried"),
	}
}

// Registry 返回指标所在的 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 Prometheus HTTP Handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) TagCreated()          { m.TagsCreated.Inc() }
func (m *Metrics) TagConflict()         { m.TagResolveConflicts.Inc() }
func (m *Metrics) QuestionCreated()     { m.QuestionsCreated.Inc() }
func (m *Metrics) AnswerCreated()       { m.AnswersCreated.Inc() }
func (m *Metrics) AnswerMarkedCorrect() { m.AnswersMarkedCorrect.Inc() }

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// wrapResponseWriter 避免多层中间件重复包装
func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// knownRoots 可直接作为指标标签的一级路径
var knownRoots = map[string]bool{
	"health": true, "metrics": true, "openapi.yaml": true,
	"question": true, "answer": true, "tag": true, "user": true,
}

// knownUserActions /user 下的二级路径
var knownUserActions = map[string]bool{"login": true, "logout": true}

// knownSubresources /{root}/{id} 下允许的三级路径
var knownSubresources = map[string]string{
	"question": "answers",
	"answer":   "mark_as_correct",
}

// normalizePath 规范化路径，将 ID 替换为占位符避免高基数
// 例如 /answer/ans-1a2b/mark_as_correct -> /answer/{id}/mark_as_correct
// 路由中不存在的路径一律记为 /other
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	root := parts[0]
	if !knownRoots[root] {
		return "/other"
	}
	switch len(parts) {
	case 1:
		return "/" + root
	case 2:
		if _, ok := knownSubresources[root]; ok {
			return "/" + root + "/{id}"
		}
		if root == "user" && knownUserActions[parts[1]] {
			return "/user/" + parts[1]
		}
	case 3:
		if sub, ok := knownSubresources[root]; ok && parts[2] == sub {
			return "/" + root + "/{id}/" + sub
		}
	}
	return "/other"
}
