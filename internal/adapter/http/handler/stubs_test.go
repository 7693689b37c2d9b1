package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

var testUser = &domain.User{ID: "user-1", Username: "alice"}

// asUser attaches the test user to req as the auth middleware would.
func asUser(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), testUser))
}

type credentialServiceStub struct {
	registerFn func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*usecase.LoginResult, error)
	logoutFn   func(ctx context.Context) error
	getUserFn  func(ctx context.Context, id string) (*domain.User, error)
	updateFn   func(ctx context.Context, input usecase.UpdateProfileInput) (*domain.User, error)
}

func (s *credentialServiceStub) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *credentialServiceStub) Login(ctx context.Context, username, password string) (*usecase.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *credentialServiceStub) Logout(ctx context.Context) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx)
}

func (s *credentialServiceStub) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *credentialServiceStub) UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, input)
}

type ledgerServiceStub struct {
	ledgerFn  func(ctx context.Context, ownerID string) (*domain.UserLedger, error)
	appendFn  func(ctx context.Context, ownerID string, input usecase.TransactionInput) (*domain.Transaction, error)
	replaceFn func(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error)
	updateFn  func(ctx context.Context, ownerID, id string, input usecase.TransactionInput) (*domain.Transaction, error)
	deleteFn  func(ctx context.Context, ownerID, id string) error
	recentFn  func(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error)
}

func (s *ledgerServiceStub) Ledger(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
	return s.ledgerFn(ctx, ownerID)
}

func (s *ledgerServiceStub) Append(ctx context.Context, ownerID string, input usecase.TransactionInput) (*domain.Transaction, error) {
	return s.appendFn(ctx, ownerID, input)
}

func (s *ledgerServiceStub) ReplaceAll(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error) {
	return s.replaceFn(ctx, ownerID, txns)
}

func (s *ledgerServiceStub) UpdateTransaction(ctx context.Context, ownerID, id string, input usecase.TransactionInput) (*domain.Transaction, error) {
	return s.updateFn(ctx, ownerID, id, input)
}

func (s *ledgerServiceStub) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	return s.deleteFn(ctx, ownerID, id)
}

func (s *ledgerServiceStub) Recent(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error) {
	return s.recentFn(ctx, ownerID, n)
}

type summaryServiceStub struct {
	order        aggregation.SeriesOrder
	summaryFn    func(ctx context.Context, ownerID string) (*aggregation.Summary, error)
	monthlyFn    func(ctx context.Context, ownerID string, order aggregation.SeriesOrder) ([]aggregation.MonthPoint, error)
	categoriesFn func(ctx context.Context, ownerID string) ([]aggregation.CategoryTotal, error)
	calendarFn   func(ctx context.Context, ownerID string, year int, month time.Month) ([]aggregation.CalendarDay, error)
	dayFn        func(ctx context.Context, ownerID string, day time.Time) (*usecase.DayDetail, error)
}

func (s *summaryServiceStub) Order() aggregation.SeriesOrder { return s.order }

func (s *summaryServiceStub) Summary(ctx context.Context, ownerID string) (*aggregation.Summary, error) {
	return s.summaryFn(ctx, ownerID)
}

func (s *summaryServiceStub) Monthly(ctx context.Context, ownerID string, order aggregation.SeriesOrder) ([]aggregation.MonthPoint, error) {
	return s.monthlyFn(ctx, ownerID, order)
}

func (s *summaryServiceStub) Categories(ctx context.Context, ownerID string) ([]aggregation.CategoryTotal, error) {
	return s.categoriesFn(ctx, ownerID)
}

func (s *summaryServiceStub) Calendar(ctx context.Context, ownerID string, year int, month time.Month) ([]aggregation.CalendarDay, error) {
	return s.calendarFn(ctx, ownerID, year, month)
}

func (s *summaryServiceStub) Day(ctx context.Context, ownerID string, day time.Time) (*usecase.DayDetail, error) {
	return s.dayFn(ctx, ownerID, day)
}

type reportServiceStub struct {
	writeFn func(ctx context.Context, ownerID string, w io.Writer) error
}

func (s *reportServiceStub) ContentType() string { return "application/pdf" }

func (s *reportServiceStub) Write(ctx context.Context, ownerID string, w io.Writer) error {
	return s.writeFn(ctx, ownerID, w)
}
