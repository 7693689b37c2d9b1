package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

func sampleTxn(id string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Description: "Coffee",
		Amount:      decimal.RequireFromString("3.50"),
		Type:        domain.TransactionTypeExpense,
		Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Category:    "Food",
		UserID:      testUser.ID,
	}
}

// withURLParam routes req through chi so URL params resolve.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTransactionHandler_List(t *testing.T) {
	h := NewTransactionHandler(&ledgerServiceStub{
		ledgerFn: func(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
			assert.Equal(t, testUser.ID, ownerID)
			return &domain.UserLedger{OwnerID: ownerID, Version: 3, Transactions: []domain.Transaction{sampleTxn("t1"), sampleTxn("t2")}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.LedgerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Version)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "t1", resp.Transactions[0].ID)
	assert.Equal(t, "2024-03-09", resp.Transactions[0].Date)
}

func TestTransactionHandler_Append(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCall   bool
	}{
		{
			name:       "created",
			body:       `{"description":"Coffee","amount":"3.50","type":"expense","date":"2024-03-09","category":"Food"}`,
			wantStatus: http.StatusCreated,
			wantCall:   true,
		},
		{
			name:       "bad date",
			body:       `{"description":"Coffee","amount":"3.50","type":"expense","date":"09/03/2024"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rejected by ledger",
			body:       `{"description":"","amount":"3.50","type":"expense","date":"2024-03-09"}`,
			err:        domain.ErrEmptyDescription,
			wantStatus: http.StatusBadRequest,
			wantCall:   true,
		},
		{
			name:       "malformed amount",
			body:       `{"description":"Coffee","amount":"lots","type":"expense","date":"2024-03-09"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing amount",
			body:       `{"description":"Coffee","type":"expense","date":"2024-03-09"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null amount",
			body:       `{"description":"Coffee","amount":null,"type":"expense","date":"2024-03-09"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := NewTransactionHandler(&ledgerServiceStub{
				appendFn: func(ctx context.Context, ownerID string, input usecase.TransactionInput) (*domain.Transaction, error) {
					called = true
					if tt.err != nil {
						return nil, tt.err
					}
					assert.True(t, input.Amount.Equal(decimal.RequireFromString("3.5")))
					assert.Equal(t, domain.TransactionTypeExpense, input.Type)
					txn := sampleTxn("t-new")
					return &txn, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Append(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(tt.body))))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCall, called)
		})
	}
}

func TestTransactionHandler_ReplaceAll(t *testing.T) {
	var got []domain.Transaction
	h := NewTransactionHandler(&ledgerServiceStub{
		replaceFn: func(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error) {
			got = txns
			return &domain.UserLedger{OwnerID: ownerID, Version: 1, Transactions: txns}, nil
		},
	})

	body := `{"transactions":[
		{"id":"a","description":"Salary","amount":"1000","type":"income","date":"2024-01-31","category":"Salary"},
		{"id":"b","description":"Rent","amount":"400","type":"expense","date":"2024-02-01","category":"Housing"}
	]}`
	rec := httptest.NewRecorder()
	h.ReplaceAll(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/v1/transactions", bytes.NewBufferString(body))))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestTransactionHandler_ReplaceAllRequiresAmounts(t *testing.T) {
	called := false
	h := NewTransactionHandler(&ledgerServiceStub{
		replaceFn: func(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error) {
			called = true
			return &domain.UserLedger{OwnerID: ownerID}, nil
		},
	})

	body := `{"transactions":[
		{"id":"a","description":"Salary","amount":"1000","type":"income","date":"2024-01-31"},
		{"id":"b","description":"Rent","amount":null,"type":"expense","date":"2024-02-01"}
	]}`
	rec := httptest.NewRecorder()
	h.ReplaceAll(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/v1/transactions", bytes.NewBufferString(body))))

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "amount is required")
	assert.False(t, called)
}

func TestTransactionHandler_ReplaceAllConflict(t *testing.T) {
	h := NewTransactionHandler(&ledgerServiceStub{
		replaceFn: func(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error) {
			return nil, domain.ErrVersionConflict
		},
	})

	rec := httptest.NewRecorder()
	h.ReplaceAll(rec, asUser(httptest.NewRequest(http.MethodPut, "/api/v1/transactions", bytes.NewBufferString(`{"transactions":[]}`))))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTransactionHandler_RecentClampsN(t *testing.T) {
	tests := []struct {
		query string
		wantN int
	}{
		{"", 5},
		{"?n=2", 2},
		{"?n=-4", 0},
		{"?n=100000", maxRecent},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var gotN int
			h := NewTransactionHandler(&ledgerServiceStub{
				recentFn: func(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error) {
					gotN = n
					return []domain.Transaction{}, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Recent(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/transactions/recent"+tt.query, nil)))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantN, gotN)
		})
	}
}

func TestTransactionHandler_Update(t *testing.T) {
	h := NewTransactionHandler(&ledgerServiceStub{
		updateFn: func(ctx context.Context, ownerID, id string, input usecase.TransactionInput) (*domain.Transaction, error) {
			if id != "t1" {
				return nil, domain.ErrTransactionNotFound
			}
			txn := sampleTxn(id)
			txn.Description = input.Description
			return &txn, nil
		},
	})

	body := `{"description":"Tea","amount":"2","type":"expense","date":"2024-03-09"}`

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/v1/transactions/t1", bytes.NewBufferString(body)))
	h.Update(rec, withURLParam(req, "id", "t1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Tea", resp.Description)

	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest(http.MethodPut, "/api/v1/transactions/zzz", bytes.NewBufferString(body)))
	h.Update(rec, withURLParam(req, "id", "zzz"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionHandler_Delete(t *testing.T) {
	var deleted string
	h := NewTransactionHandler(&ledgerServiceStub{
		deleteFn: func(ctx context.Context, ownerID, id string) error {
			deleted = id
			return nil
		},
	})

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/t1", nil))
	h.Delete(rec, withURLParam(req, "id", "t1"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "t1", deleted)
}
