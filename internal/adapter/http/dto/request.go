package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// CredentialsRequest is the body of register and login requests.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a username and/or password change.
type UpdateProfileRequest struct {
	CurrentPassword string `json:"current_password"`
	NewUsername     string `json:"new_username"`
	NewPassword     string `json:"new_password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput(userID string) usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		UserID:          userID,
		CurrentPassword: r.CurrentPassword,
		NewUsername:     r.NewUsername,
		NewPassword:     r.NewPassword,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// TransactionRequest is the body of append and update requests. Amount is
// a pointer so a missing or null amount can be told apart from zero.
type TransactionRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Date        string           `json:"date"`
	Category    string           `json:"category,omitempty"`
}

// ToUseCaseInput converts to use case input. The amount is required and the
// date must be YYYY-MM-DD.
func (r *TransactionRequest) ToUseCaseInput() (usecase.TransactionInput, error) {
	amount, err := requiredAmount(r.Amount)
	if err != nil {
		return usecase.TransactionInput{}, err
	}

	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.TransactionInput{}, err
	}

	return usecase.TransactionInput{
		Description: r.Description,
		Amount:      amount,
		Type:        domain.TransactionType(r.Type),
		Date:        date,
		Category:    r.Category,
	}, nil
}

// ReplaceTransactionsRequest carries a whole ledger, ids included.
type ReplaceTransactionsRequest struct {
	Transactions []TransactionPayload `json:"transactions"`
}

// TransactionPayload is a transaction as clients send it on replace.
type TransactionPayload struct {
	ID string `json:"id"`
	TransactionRequest
}

// ToDomain converts every payload, failing on the first missing amount or
// bad date.
func (r *ReplaceTransactionsRequest) ToDomain() ([]domain.Transaction, error) {
	txns := make([]domain.Transaction, 0, len(r.Transactions))
	for _, p := range r.Transactions {
		amount, err := requiredAmount(p.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %q: %w", p.ID, err)
		}
		date, err := domain.ParseDate(p.Date)
		if err != nil {
			return nil, err
		}
		txns = append(txns, domain.Transaction{
			ID:          p.ID,
			Description: p.Description,
			Amount:      amount,
			Type:        domain.TransactionType(p.Type),
			Date:        date,
			Category:    p.Category,
		})
	}
	return txns, nil
}

func requiredAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	return *amount, nil
}
