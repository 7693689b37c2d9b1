package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// SummaryService defines the behavior needed by SummaryHandler.
type SummaryService interface {
	Order() aggregation.SeriesOrder
	Summary(ctx context.Context, ownerID string) (*aggregation.Summary, error)
	Monthly(ctx context.Context, ownerID string, order aggregation.SeriesOrder) ([]aggregation.MonthPoint, error)
	Categories(ctx context.Context, ownerID string) ([]aggregation.CategoryTotal, error)
	Calendar(ctx context.Context, ownerID string, year int, month time.Month) ([]aggregation.CalendarDay, error)
	Day(ctx context.Context, ownerID string, day time.Time) (*usecase.DayDetail, error)
}

// SummaryHandler serves the dashboard and calendar views.
type SummaryHandler struct {
	summaries SummaryService
	now       func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaries SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, now: time.Now}
}

// Summary returns totals, monthly series, categories and recent
// transactions in one response.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.summaries.Summary(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, "failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromAggregation(summary))
}

// Monthly returns the net-per-month series. The order query parameter
// overrides the configured order.
func (h *SummaryHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	order := h.summaries.Order()
	if raw := r.URL.Query().Get("order"); raw != "" {
		parsed, err := aggregation.ParseSeriesOrder(raw)
		if err != nil {
			writeDomainError(w, "invalid order", err)
			return
		}
		order = parsed
	}

	points, err := h.summaries.Monthly(r.Context(), user.ID, order)
	if err != nil {
		writeDomainError(w, "failed to build monthly series", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlyResponse{
		Order:  string(order),
		Points: dto.MonthlyFromAggregation(points),
	})
}

// Categories returns the share of every category, with income and expense
// amounts counted together by magnitude.
func (h *SummaryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	cats, err := h.summaries.Categories(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, "failed to build categories", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesFromAggregation(cats))
}

// Calendar returns one cell per day of ?month=YYYY-MM, the current month
// when omitted.
func (h *SummaryHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	month := h.now().UTC()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month", "month must be YYYY-MM")
			return
		}
		month = parsed
	}

	days, err := h.summaries.Calendar(r.Context(), user.ID, month.Year(), month.Month())
	if err != nil {
		writeDomainError(w, "failed to build calendar", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CalendarFromAggregation(month.Year(), month.Month(), days))
}

// Day returns one calendar day with its transactions.
func (h *SummaryHandler) Day(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	day, err := time.Parse(domain.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeDomainError(w, "invalid date", domain.ErrInvalidDate)
		return
	}

	detail, err := h.summaries.Day(r.Context(), user.ID, day)
	if err != nil {
		writeDomainError(w, "failed to load day", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DayFromUseCase(detail))
}
