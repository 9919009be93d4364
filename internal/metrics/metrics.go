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
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
	RecordSignInSuccess()
	RecordSignInFailure()
	RecordCustomerCreated(customerKind string)
	RecordUploadAccepted()
	RecordUploadRejected(reason string)
	RecordStorageError()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	signInSuccess    prometheus.Counter
	signInFail       prometheus.Counter
	customersCreated *prometheus.CounterVec
	uploadAccepted   prometheus.Counter
	uploadRejected   *prometheus.CounterVec
	storageErrors    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tellerdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tellerdesk_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		signInSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tellerdesk_sign_in_success_total",
			Help: "サインイン成功の合計数",
		}),
		signInFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tellerdesk_sign_in_fail_total",
			Help: "サインイン失敗の合計数",
		}),
		customersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tellerdesk_customers_created_total",
			Help: "登録された顧客数（個人・法人別）",
		}, []string{"kind"}),
		uploadAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tellerdesk_upload_accepted_total",
			Help: "受け付けた書類アップロードの合計数",
		}),
		uploadRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tellerdesk_upload_rejected_total",
			Help: "事前検証で拒否した書類アップロードの合計数",
		}, []string{"reason"}),
		storageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tellerdesk_storage_errors_total",
			Help: "ストレージ転送失敗の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.signInSuccess,
		c.signInFail,
		c.customersCreated,
		c.uploadAccepted,
		c.uploadRejected,
		c.storageErrors,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordSignInSuccess はサインイン成功を記録する。
func (c *Collector) RecordSignInSuccess() {
	c.signInSuccess.Inc()
}

// RecordSignInFailure はサインイン失敗を記録する。
func (c *Collector) RecordSignInFailure() {
	c.signInFail.Inc()
}

// RecordCustomerCreated は顧客登録を記録する。kindはpersonalまたはcompany。
func (c *Collector) RecordCustomerCreated(customerKind string) {
	c.customersCreated.WithLabelValues(customerKind).Inc()
}

// RecordUploadAccepted は受理した書類アップロードを記録する。
func (c *Collector) RecordUploadAccepted() {
	c.uploadAccepted.Inc()
}

// RecordUploadRejected は事前検証で拒否したアップロードを記録する。
func (c *Collector) RecordUploadRejected(reason string) {
	c.uploadRejected.WithLabelValues(reason).Inc()
}

// RecordStorageError はストレージ転送失敗を記録する。
func (c *Collector) RecordStorageError() {
	c.storageErrors.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
