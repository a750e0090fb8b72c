// Package metrics 定义目录服务的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 搜索结果标签
const (
	SearchOK       = "ok"
	SearchRejected = "rejected"
	SearchFailed   = "failed"
)

// Metrics 同一进程内共享一份，测试可各自 New 独立的 Registry
type Metrics struct {
	registry      *prometheus.Registry
	deactivations *prometheus.CounterVec
	searches      *prometheus.CounterVec
}

// New 创建指标并注册到独立 Registry（附带 Go 运行时指标）
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deactivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_deactivations_total",
			Help: "Derived active flags flipped to false by cascading deactivation.",
		}, []string{"entity"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Filtered searches by entity and result.",
		}, []string{"entity", "result"}),
	}
	m.registry.MustRegister(
		m.deactivations,
		m.searches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Deactivated 记录一次实际发生的停用；m 为 nil 时忽略
func (m *Metrics) Deactivated(entity string) {
	if m == nil {
		return
	}
	m.deactivations.WithLabelValues(entity).Inc()
}

// Searched 记录一次搜索
func (m *Metrics) Searched(entity, result string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(entity, result).Inc()
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 暴露给测试读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
