package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "rentledger_"

// BillingMetrics implements the billing engine's metrics surface on the
// default prometheus registry.
type BillingMetrics struct {
	billsGenerated   prometheus.Counter
	billsSkipped     prometheus.Counter
	batchFailures    prometheus.Counter
	paymentsRecorded prometheus.Counter
	tenantsClosed    prometheus.Counter
	batchDuration    prometheus.Histogram
}

func NewBillingMetrics() *BillingMetrics {
	m := &BillingMetrics{
		billsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "bills_generated_total",
			Help: "Bills created by generation",
		}),
		billsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "bills_skipped_total",
			Help: "Generation calls answered by an existing bill",
		}),
		batchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "batch_tenant_failures_total",
			Help: "Tenants whose generation failed during a batch run",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "payments_recorded_total",
			Help: "Payments recorded",
		}),
		tenantsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "tenants_closed_total",
			Help: "Tenancies settled and closed",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "batch_duration_seconds",
			Help:    "Duration of billing batch runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
	prometheus.MustRegister(
		m.billsGenerated,
		m.billsSkipped,
		m.batchFailures,
		m.paymentsRecorded,
		m.tenantsClosed,
		m.batchDuration,
	)
	return m
}

func (m *BillingMetrics) BillGenerated()     { m.billsGenerated.Inc() }
func (m *BillingMetrics) BillSkipped()       { m.billsSkipped.Inc() }
func (m *BillingMetrics) BatchTenantFailed() { m.batchFailures.Inc() }
func (m *BillingMetrics) PaymentRecorded()   { m.paymentsRecorded.Inc() }
func (m *BillingMetrics) TenantClosed()      { m.tenantsClosed.Inc() }

func (m *BillingMetrics) ObserveBatchDuration(d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
