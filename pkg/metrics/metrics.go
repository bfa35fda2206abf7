// Package metrics 定义推荐链路的 Prometheus 指标，注册在独立的 Registry 上，
// 由调用方决定是否暴露（例如挂到自己的 /metrics handler）。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filmtaste"

var registry = prometheus.NewRegistry()

var (
	// NodeDuration 是 Pipeline 各 Node 的耗时
	NodeDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_node_duration_seconds",
			Help:      "Duration of pipeline node processing in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)

	NodeErrors = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_node_errors_total",
			Help:      "Total number of pipeline node errors",
		},
		[]string{"node", "kind"},
	)

	// CandidatesRecalled 按召回源统计候选数
	CandidatesRecalled = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_recalled_total",
			Help:      "Total number of candidates produced by recall sources",
		},
		[]string{"source"},
	)

	CandidatesFiltered = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_filtered_total",
			Help:      "Total number of candidates removed by filters",
		},
		[]string{"filter"},
	)

	RecommendationsServed = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_served_total",
			Help:      "Total number of recommendations returned to callers",
		},
	)

	// CollaboratorFallbacks 统计协作方失败后使用默认值的次数
	CollaboratorFallbacks = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_fallbacks_total",
			Help:      "Total number of collaborator calls answered with a fallback value",
		},
		[]string{"collaborator"},
	)

	CacheLookups = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of fingerprint cache lookups",
		},
		[]string{"result"},
	)
)

// Registry 返回所有指标所在的 Registry。
func Registry() *prometheus.Registry {
	return registry
}

// ObserveNode 记录一次 Node 执行。
func ObserveNode(node, kind string, start time.Time, err error) {
	NodeDuration.WithLabelValues(node, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node, kind).Inc()
	}
}

func RecordRecall(source string, n int) {
	if n > 0 {
		CandidatesRecalled.WithLabelValues(source).Add(float64(n))
	}
}

func RecordFiltered(filter string, n int) {
	if n > 0 {
		CandidatesFiltered.WithLabelValues(filter).Add(float64(n))
	}
}

func RecordFallback(collaborator string) {
	CollaboratorFallbacks.WithLabelValues(collaborator).Inc()
}

func RecordCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
