package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mezonai/jetton/logx"
)

type TxStatusLabel string

const (
	TxCommitted TxStatusLabel = "committed"
	TxAborted   TxStatusLabel = "aborted"
)

type ledgerPromMetrics struct {
	upUnixSeconds      prometheus.Gauge
	queueSize          prometheus.Gauge
	txCount            *prometheus.CounterVec
	txDuration         prometheus.Histogram
	rejectedExternal   *prometheus.CounterVec
	bouncedCount       prometheus.Counter
	outMsgCount        prometheus.Counter
	collectedFeesNano  prometheus.Gauge
	deployedActorCount *prometheus.CounterVec
	panicCount         prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		upUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jetton_ledger_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the ledger start",
			},
		),
		queueSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jetton_ledger_queue_size",
				Help: "Internal messages waiting to be delivered",
			},
		),
		txCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jetton_ledger_tx_count",
				Help: "Transactions committed, by contract and outcome",
			},
			[]string{"contract", "status"},
		),
		txDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "jetton_ledger_tx_duration_seconds",
				Help: "Time spent executing one transaction",
			},
		),
		rejectedExternal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jetton_ledger_rejected_external_count",
				Help: "External messages rejected before acceptance",
			},
			[]string{"reason"},
		),
		bouncedCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jetton_ledger_bounced_message_count",
				Help: "Messages whose value was bounced back to the sender",
			},
		),
		outMsgCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jetton_ledger_out_message_count",
				Help: "Internal messages emitted by action phases",
			},
		),
		collectedFeesNano: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jetton_ledger_collected_fees_nano",
				Help: "Compute and forward fees collected so far",
			},
		),
		deployedActorCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jetton_ledger_deployed_actor_count",
				Help: "Actors instantiated from a StateInit",
			},
			[]string{"contract"},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jetton_ledger_panic_count",
				Help: "Recovered panics in handlers and goroutines",
			},
		),
	}
}

var (
	ledgerMetrics *ledgerPromMetrics
	initOnce      sync.Once
)

// InitMetrics registers the collectors once; recorders are no-ops before that.
func InitMetrics() {
	initOnce.Do(func() {
		ledgerMetrics = newLedgerPromMetrics()
		ledgerMetrics.upUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func SetQueueSize(size int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.queueSize.Set(float64(size))
}

func RecordTx(contract string, status TxStatusLabel, duration time.Duration) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.txCount.With(prometheus.Labels{
		"contract": contract,
		"status":   string(status),
	}).Inc()
	ledgerMetrics.txDuration.Observe(duration.Seconds())
}

func RecordRejectedExternal(reason string) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.rejectedExternal.With(prometheus.Labels{"reason": reason}).Inc()
}

func IncreaseBouncedCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.bouncedCount.Inc()
}

func AddOutMessages(n int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.outMsgCount.Add(float64(n))
}

func SetCollectedFees(nano float64) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.collectedFeesNano.Set(nano)
}

func IncreaseDeployedCount(contract string) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.deployedActorCount.With(prometheus.Labels{"contract": contract}).Inc()
}

func IncreasePanicCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.panicCount.Inc()
}
