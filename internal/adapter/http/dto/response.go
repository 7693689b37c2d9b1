package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UserResponse represents a user in API responses. The password hash is
// never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoginResponse carries the bearer token for later requests.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// LoginFromUseCase converts a login result to response.
func LoginFromUseCase(r *usecase.LoginResult) *LoginResponse {
	return &LoginResponse{Token: r.Token, User: UserFromDomain(r.User)}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Date:        t.Date.Format(domain.DateLayout),
		Category:    t.Category,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// LedgerResponse is a full ledger with its version.
type LedgerResponse struct {
	Version      int64                 `json:"version"`
	Transactions []TransactionResponse `json:"transactions"`
}

// LedgerFromDomain converts domain ledger to response.
func LedgerFromDomain(l *domain.UserLedger) *LedgerResponse {
	return &LedgerResponse{
		Version:      l.Version,
		Transactions: TransactionsFromDomain(l.Transactions),
	}
}

// TotalsResponse holds the income and expense totals and their difference.
type TotalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// TotalsFromAggregation converts totals to response.
func TotalsFromAggregation(t aggregation.Totals) TotalsResponse {
	return TotalsResponse{Income: t.Income, Expense: t.Expense, Net: t.Net()}
}

// MonthPointResponse is one point of the monthly net series.
type MonthPointResponse struct {
	Year  int             `json:"year,omitempty"`
	Month int             `json:"month"`
	Label string          `json:"label"`
	Net   decimal.Decimal `json:"net"`
}

// MonthlyFromAggregation converts a monthly series to response.
func MonthlyFromAggregation(points []aggregation.MonthPoint) []MonthPointResponse {
	result := make([]MonthPointResponse, len(points))
	for i, p := range points {
		result[i] = MonthPointResponse{Year: p.Year, Month: int(p.Month), Label: p.Label, Net: p.Net}
	}
	return result
}

// MonthlyResponse is the monthly series with the order it was built in.
type MonthlyResponse struct {
	Order  string               `json:"order"`
	Points []MonthPointResponse `json:"points"`
}

// CategoryResponse is one slice of the category breakdown.
type CategoryResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// CategoriesFromAggregation converts a category breakdown to response.
func CategoriesFromAggregation(cats []aggregation.CategoryTotal) []CategoryResponse {
	result := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		result[i] = CategoryResponse{Category: c.Category, Amount: c.Amount, Percent: c.Percent}
	}
	return result
}

// SummaryResponse is the dashboard view of a ledger.
type SummaryResponse struct {
	TransactionCount int                   `json:"transaction_count"`
	NetBalance       decimal.Decimal       `json:"net_balance"`
	Totals           TotalsResponse        `json:"totals"`
	Monthly          []MonthPointResponse  `json:"monthly"`
	Categories       []CategoryResponse    `json:"categories"`
	Recent           []TransactionResponse `json:"recent"`
}

// SummaryFromAggregation converts a summary to response.
func SummaryFromAggregation(s *aggregation.Summary) *SummaryResponse {
	return &SummaryResponse{
		TransactionCount: s.TransactionCount,
		NetBalance:       s.NetBalance,
		Totals:           TotalsFromAggregation(s.Totals),
		Monthly:          MonthlyFromAggregation(s.Monthly),
		Categories:       CategoriesFromAggregation(s.Categories),
		Recent:           TransactionsFromDomain(s.Recent),
	}
}

// CalendarDayResponse is one cell of the month calendar.
type CalendarDayResponse struct {
	Date      string          `json:"date"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Count     int             `json:"count"`
	Indicator string          `json:"indicator"`
}

// CalendarDayFromAggregation converts a calendar cell to response.
func CalendarDayFromAggregation(d aggregation.CalendarDay) CalendarDayResponse {
	return CalendarDayResponse{
		Date:      d.Date.Format(domain.DateLayout),
		Income:    d.Income,
		Expense:   d.Expense,
		Count:     d.Count,
		Indicator: string(d.Indicator),
	}
}

// CalendarResponse is a whole month of calendar cells.
type CalendarResponse struct {
	Month string                `json:"month"`
	Days  []CalendarDayResponse `json:"days"`
}

// CalendarFromAggregation converts a month calendar to response.
func CalendarFromAggregation(year int, month time.Month, days []aggregation.CalendarDay) *CalendarResponse {
	resp := &CalendarResponse{
		Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Days:  make([]CalendarDayResponse, len(days)),
	}
	for i, d := range days {
		resp.Days[i] = CalendarDayFromAggregation(d)
	}
	return resp
}

// DayResponse is one calendar day with its transactions.
type DayResponse struct {
	Day          CalendarDayResponse   `json:"day"`
	Transactions []TransactionResponse `json:"transactions"`
}

// DayFromUseCase converts day detail to response.
func DayFromUseCase(d *usecase.DayDetail) *DayResponse {
	return &DayResponse{
		Day:          CalendarDayFromAggregation(d.Day),
		Transactions: TransactionsFromDomain(d.Transactions),
	}
}
