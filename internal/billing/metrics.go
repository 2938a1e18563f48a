package billing

import "time"

// Metrics is the counter surface the engine reports into. The prometheus
// implementation lives in internal/observability.
type Metrics interface {
	BillGenerated()
	BillSkipped()
	BatchTenantFailed()
	PaymentRecorded()
	TenantClosed()
	ObserveBatchDuration(d time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) BillGenerated()                     {}
func (NoopMetrics) BillSkipped()                       {}
func (NoopMetrics) BatchTenantFailed()                 {}
func (NoopMetrics) PaymentRecorded()                   {}
func (NoopMetrics) TenantClosed()                      {}
func (NoopMetrics) ObserveBatchDuration(time.Duration) {}
