// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightbot_questions_processed_total",
			Help: "Total number of questions answered, by selected template",
		},
		[]string{"template_id"},
	)

	PipelineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightbot_pipeline_failures_total",
			Help: "Total number of pipeline failures by stage",
		},
		[]string{"stage", "error_code"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "insightbot_query_duration_seconds",
			Help: "Duration of SQL query execution in seconds",
		},
		[]string{"template_id"},
	)

	ChartsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightbot_charts_rendered_total",
			Help: "Total number of charts rendered, by chart kind",
		},
		[]string{"kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightbot_cache_requests_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
