package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// maxRecent caps the n query parameter of the recent endpoint.
const maxRecent = 100

// LedgerService defines the behavior needed by TransactionHandler.
type LedgerService interface {
	Ledger(ctx context.Context, ownerID string) (*domain.UserLedger, error)
	Append(ctx context.Context, ownerID string, input usecase.TransactionInput) (*domain.Transaction, error)
	ReplaceAll(ctx context.Context, ownerID string, txns []domain.Transaction) (*domain.UserLedger, error)
	UpdateTransaction(ctx context.Context, ownerID, id string, input usecase.TransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) error
	Recent(ctx context.Context, ownerID string, n int) ([]domain.Transaction, error)
}

// TransactionHandler handles the authenticated user's ledger.
type TransactionHandler struct {
	ledgers LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgers LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgers: ledgers}
}

// List returns every transaction in insertion order.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ledger, err := h.ledgers.Ledger(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, "failed to load transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Append adds one transaction to the end of the ledger.
func (h *TransactionHandler) Append(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	txn, err := h.ledgers.Append(r.Context(), user.ID, input)
	if err != nil {
		writeDomainError(w, "failed to add transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(*txn))
}

// ReplaceAll overwrites the whole ledger.
func (h *TransactionHandler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ReplaceTransactionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	txns, err := req.ToDomain()
	if err != nil {
		writeDomainError(w, "invalid transactions", err)
		return
	}

	ledger, err := h.ledgers.ReplaceAll(r.Context(), user.ID, txns)
	if err != nil {
		writeDomainError(w, "failed to replace transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Recent returns the newest transactions, five unless n says otherwise.
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	n := parseIntQuery(r, "n", aggregation.DefaultRecentCount)
	if n < 0 {
		n = 0
	}
	if n > maxRecent {
		n = maxRecent
	}

	txns, err := h.ledgers.Recent(r.Context(), user.ID, n)
	if err != nil {
		writeDomainError(w, "failed to load recent transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}

// Update edits one transaction in place.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	txn, err := h.ledgers.UpdateTransaction(r.Context(), user.ID, id, input)
	if err != nil {
		writeDomainError(w, "failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(*txn))
}

// Delete removes one transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.ledgers.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, "failed to delete transaction", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
