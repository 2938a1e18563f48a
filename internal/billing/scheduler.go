package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/logging"
)

// TenantFailure records one tenant whose generation failed during a batch
// run.
type TenantFailure struct {
	TenantID uuid.UUID
	Err      error
}

// RunReport is the partial-success result of a batch run. Bills includes
// pre-existing bills returned unchanged by the idempotency gate.
type RunReport struct {
	Year     int
	Month    time.Month
	DueDate  time.Time
	Bills    []BillOutcome
	Failures []TenantFailure
}

type BillOutcome struct {
	TenantID uuid.UUID
	BillID   uuid.UUID
	Total    int64
	IsPaid   bool
}

// RunMonthly is the cadence entry point: it bills the current period with
// a due date a fixed number of days out from the run. The caller (cron, a
// systemd timer, an admin endpoint) owns the schedule; this function only
// ever reads time through the injected clock.
func (s *Service) RunMonthly(ctx context.Context) (*RunReport, error) {
	now := s.clock.Now()
	year, month, _ := now.Date()
	dueDate := now.AddDate(0, 0, s.policy.DueDateGraceDays)

	report, err := s.runBatch(ctx, year, month, dueDate)
	if err != nil {
		return nil, fmt.Errorf("RunMonthly: %w", err)
	}
	return report, nil
}

// GenerateForMonth is the administrative variant. Unlike RunMonthly, the
// due date is pinned to a fixed day of the target month, not relative to
// the run time.
func (s *Service) GenerateForMonth(ctx context.Context, year int, month time.Month) (*RunReport, error) {
	if err := s.validateBillingMonth(year, month); err != nil {
		return nil, fmt.Errorf("GenerateForMonth: %w", err)
	}
	dueDate := time.Date(year, month, s.policy.DueDateFixedDay, 0, 0, 0, 0, time.UTC)

	report, err := s.runBatch(ctx, year, month, dueDate)
	if err != nil {
		return nil, fmt.Errorf("GenerateForMonth: %w", err)
	}
	return report, nil
}

// runBatch drives generation across all active tenants. One tenant's
// failure is logged and reported, never aborts the rest; a rerun picks up
// only the tenants that are still missing a bill.
func (s *Service) runBatch(ctx context.Context, year int, month time.Month, dueDate time.Time) (*RunReport, error) {
	log := logging.FromContext(ctx)
	started := s.clock.Now()

	tenants, err := s.tenants.ListActiveWithApartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("runBatch: %w", err)
	}

	report := &RunReport{Year: year, Month: month, DueDate: dueDate}
	for _, tw := range tenants {
		bill, err := s.generate(ctx, tw, year, month, dueDate)
		if err != nil {
			s.metrics.BatchTenantFailed()
			log.Error("batch generation failed for tenant",
				"tenant_id", tw.Tenant.ID,
				"year", year,
				"month", int(month),
				"error", err,
			)
			report.Failures = append(report.Failures, TenantFailure{TenantID: tw.Tenant.ID, Err: err})
			continue
		}
		report.Bills = append(report.Bills, BillOutcome{
			TenantID: tw.Tenant.ID,
			BillID:   bill.ID,
			Total:    bill.Total,
			IsPaid:   bill.IsPaid,
		})
	}

	s.metrics.ObserveBatchDuration(s.clock.Now().Sub(started))
	log.Info("billing batch finished",
		"year", year,
		"month", int(month),
		"generated_or_existing", len(report.Bills),
		"failed", len(report.Failures),
	)
	return report, nil
}
