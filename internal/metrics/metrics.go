// Package metrics 导出连接生命周期和 JSON-RPC 流量的 prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mowind/walletrpc-go/internal/catalog"
	"github.com/mowind/walletrpc-go/internal/connection"
)

const (
	namespace = "walletrpc"

	resultSuccess = "success"
	resultFailure = "failure"
	resultFound   = "found"
	resultMiss    = "miss"

	// otherMethod 不在方法目录中的 JSON-RPC 方法共用的标签值
	otherMethod = "other"
)

// Metrics 持有所有指标，使用独立的 registry
type Metrics struct {
	registry *prometheus.Registry

	connectAttempts *prometheus.CounterVec
	disconnects     *prometheus.CounterVec
	bridgePolls     *prometheus.CounterVec
	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New 创建并注册指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Number of connect attempts by connection method and result",
		}, []string{"method", "result"}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnects_total",
			Help:      "Number of disconnects by connection method",
		}, []string{"method"}),
		bridgePolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_polls_total",
			Help:      "Number of external wallet discovery polls by result",
		}, []string{"result"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Number of JSON-RPC requests by method and response code",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "JSON-RPC request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connectAttempts,
		m.disconnects,
		m.bridgePolls,
		m.rpcRequests,
		m.rpcDuration,
	)
	return m
}

// Registry 返回指标使用的 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ConnectAttempt 实现 connection.Observer
func (m *Metrics) ConnectAttempt(method connection.Method, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.connectAttempts.WithLabelValues(method.String(), result).Inc()
}

// Disconnected 实现 connection.Observer
func (m *Metrics) Disconnected(method connection.Method) {
	m.disconnects.WithLabelValues(method.String()).Inc()
}

// BridgePoll 记录一次外部钱包发现轮询，可作为 connection.WithPollObserver 的回调
func (m *Metrics) BridgePoll(attempt int, found bool) {
	result := resultMiss
	if found {
		result = resultFound
	}
	m.bridgePolls.WithLabelValues(result).Inc()
}

// ObserveRPC 实现 router.Recorder
func (m *Metrics) ObserveRPC(method string, code int, duration time.Duration) {
	label := methodLabel(method)
	m.rpcRequests.WithLabelValues(label, strconv.Itoa(code)).Inc()
	m.rpcDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// methodLabel 把方法名限制在目录内，其余统一记为 other
func methodLabel(method string) string {
	if _, ok := catalog.Lookup(method); ok {
		return method
	}
	return otherMethod
}

var _ connection.Observer = (*Metrics)(nil)
