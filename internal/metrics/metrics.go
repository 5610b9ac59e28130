// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordEventCreated(roleCount int)
	RecordSignup()
	RecordSignupRejected(reason string)
	RecordAttendanceMarked(attended bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	eventsCreated   prometheus.Counter
	rolesCreated    prometheus.Counter
	signups         prometheus.Counter
	signupsRejected *prometheus.CounterVec
	attendance      *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volunteerhub_events_created_total",
			Help: "作成されたイベントの合計数",
		}),
		rolesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volunteerhub_roles_created_total",
			Help: "イベント作成時に作成されたロールの合計数",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volunteerhub_signups_total",
			Help: "成功した応募の合計数",
		}),
		signupsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteerhub_signups_rejected_total",
			Help: "拒否された応募の理由別の数",
		}, []string{"reason"}),
		attendance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteerhub_attendance_marked_total",
			Help: "出席状況の更新数",
		}, []string{"attended"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "volunteerhub_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "volunteerhub_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.eventsCreated,
		c.rolesCreated,
		c.signups,
		c.signupsRejected,
		c.attendance,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordEventCreated はイベント作成を記録する。
func (c *Collector) RecordEventCreated(roleCount int) {
	c.eventsCreated.Inc()
	c.rolesCreated.Add(float64(roleCount))
}

// RecordSignup は応募成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordSignupRejected は応募の拒否を理由（エラーコード）とともに記録する。
func (c *Collector) RecordSignupRejected(reason string) {
	c.signupsRejected.WithLabelValues(reason).Inc()
}

// RecordAttendanceMarked は出席状況の更新を記録する。
func (c *Collector) RecordAttendanceMarked(attended bool) {
	c.attendance.WithLabelValues(strconv.FormatBool(attended)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordEventCreated(int) {}
func (Nop) RecordSignup() {}
func (Nop) RecordSignupRejected(string) {}
func (Nop) RecordAttendanceMarked(bool) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}
