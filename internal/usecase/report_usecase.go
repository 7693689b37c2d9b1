package usecase

import (
	"context"
	"io"
	"time"

	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// ReportTitle heads every expense report.
const ReportTitle = "Expense Report"

// ExpenseReport is the printable view of a ledger.
type ExpenseReport struct {
	Title        string
	Username     string
	GeneratedAt  time.Time
	Transactions []domain.Transaction
	Totals       aggregation.Totals
}

// ReportRenderer writes a report in some document format.
type ReportRenderer interface {
	ContentType() string
	Render(w io.Writer, report *ExpenseReport) error
}

// ReportUseCase builds and renders expense reports.
type ReportUseCase struct {
	ledgerRepo LedgerRepository
	userRepo   UserRepository
	renderer   ReportRenderer
	metrics    *metrics.Metrics
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(ledgerRepo LedgerRepository, userRepo UserRepository, renderer ReportRenderer, metrics *metrics.Metrics) *ReportUseCase {
	return &ReportUseCase{
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		renderer:   renderer,
		metrics:    metrics,
	}
}

// Build assembles the report for the owner.
func (uc *ReportUseCase) Build(ctx context.Context, ownerID string) (*ExpenseReport, error) {
	user, err := uc.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ledger, err := uc.ledgerRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &ExpenseReport{
		Title:        ReportTitle,
		Username:     user.Username,
		GeneratedAt:  time.Now().UTC(),
		Transactions: ledger.Snapshot(),
		Totals:       aggregation.TotalsByType(ledger.Transactions),
	}, nil
}

// ContentType is the media type of rendered reports.
func (uc *ReportUseCase) ContentType() string {
	return uc.renderer.ContentType()
}

// Write renders the owner's report to w.
func (uc *ReportUseCase) Write(ctx context.Context, ownerID string, w io.Writer) error {
	report, err := uc.Build(ctx, ownerID)
	if err != nil {
		return err
	}

	if err := uc.renderer.Render(w, report); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ReportsRendered.Inc()
	}

	return nil
}
