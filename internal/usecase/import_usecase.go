package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// LegacyExport is the local-storage dump of the browser client:
// plaintext credentials and ledgers keyed by username.
type LegacyExport struct {
	Users       []LegacyUser   `json:"users"`
	Budgets     []LegacyBudget `json:"budgets"`
	CurrentUser string         `json:"currentUser,omitempty"`
}

// LegacyUser is a credential record from the export.
type LegacyUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LegacyBudget is a ledger from the export. UserID holds a username.
type LegacyBudget struct {
	UserID       string              `json:"userId"`
	Transactions []LegacyTransaction `json:"transactions"`
}

// LegacyTransaction is a transaction from the export. Date is an ISO
// timestamp and Amount a JSON number; nil means the amount was missing or null.
type LegacyTransaction struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        string           `json:"type"`
	Date        string           `json:"date"`
	Category    string           `json:"category"`
	UserID      string           `json:"userId"`
}

// ReadLegacyExport decodes an export document.
func ReadLegacyExport(r io.Reader) (*LegacyExport, error) {
	var export LegacyExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("%w: malformed export: %v", domain.ErrValidation, err)
	}
	return &export, nil
}

// ImportResult reports what an import did.
type ImportResult struct {
	UsersImported        int
	TransactionsImported int
	// SkippedUsers already existed; their ledgers are left untouched.
	SkippedUsers []string
	// ResumedUsers already existed with the exported password and an empty
	// ledger, so their exported budget was imported. This lets a failed run be
	// repeated.
	ResumedUsers []string
	// OrphanedBudgets name ledgers without a matching user.
	OrphanedBudgets []string
}

// ImportUseCase migrates a legacy export into the current stores.
type ImportUseCase struct {
	credentials *CredentialUseCase
	ledgers     *LedgerUseCase
	logger      zerolog.Logger
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(credentials *CredentialUseCase, ledgers *LedgerUseCase, logger zerolog.Logger) *ImportUseCase {
	return &ImportUseCase{
		credentials: credentials,
		ledgers:     ledgers,
		logger:      logger,
	}
}

// Import registers every exported user under a fresh stable id with a hashed
// password, then stores each budget under the id of the user that owned it.
// The whole export is validated first; if anything is invalid nothing is
// written and every problem is reported.
func (uc *ImportUseCase) Import(ctx context.Context, export *LegacyExport) (*ImportResult, error) {
	budgets, err := validateExport(export)
	if err != nil {
		return &ImportResult{}, err
	}

	result := &ImportResult{}
	ids := make(map[string]string, len(export.Users))

	for _, lu := range export.Users {
		user, err := uc.credentials.Register(ctx, lu.Username, lu.Password)
		if errors.Is(err, domain.ErrDuplicateUser) {
			if _, ok := budgets[lu.Username]; !ok {
				result.SkippedUsers = append(result.SkippedUsers, lu.Username)
				continue
			}
			resumable, err := uc.resumable(ctx, lu)
			if err != nil {
				return result, fmt.Errorf("import user %q: %w", lu.Username, err)
			}
			if resumable == nil {
				result.SkippedUsers = append(result.SkippedUsers, lu.Username)
				continue
			}
			ids[lu.Username] = resumable.ID
			result.ResumedUsers = append(result.ResumedUsers, lu.Username)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("import user %q: %w", lu.Username, err)
		}

		ids[lu.Username] = user.ID
		result.UsersImported++
	}

	for _, budget := range export.Budgets {
		ownerID, ok := ids[budget.UserID]
		if !ok {
			if !contains(result.SkippedUsers, budget.UserID) {
				result.OrphanedBudgets = append(result.OrphanedBudgets, budget.UserID)
				uc.logger.Warn().Str("username", budget.UserID).Msg("skipping budget without a matching user")
			}
			continue
		}

		txns := budgets[budget.UserID]
		if _, err := uc.ledgers.ReplaceAll(ctx, ownerID, txns); err != nil {
			return result, fmt.Errorf("import budget of %q: %w", budget.UserID, err)
		}

		result.TransactionsImported += len(txns)
	}

	uc.logger.Info().
		Int("users", result.UsersImported).
		Int("transactions", result.TransactionsImported).
		Int("skipped_users", len(result.SkippedUsers)).
		Int("resumed_users", len(result.ResumedUsers)).
		Msg("legacy import finished")

	return result, nil
}

// resumable returns the existing user when the exported password still
// verifies and their ledger is empty. Otherwise it returns nil.
func (uc *ImportUseCase) resumable(ctx context.Context, lu LegacyUser) (*domain.User, error) {
	user, err := uc.credentials.authenticate(ctx, lu.Username, lu.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	txns, err := uc.ledgers.Load(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(txns) > 0 {
		return nil, nil
	}

	return user, nil
}

// validateExport checks every user and every owned budget without writing
// anything. It returns the converted transactions keyed by username.
func validateExport(export *LegacyExport) (map[string][]domain.Transaction, error) {
	var errs []error
	seen := make(map[string]bool, len(export.Users))

	for _, lu := range export.Users {
		if err := domain.ValidateUsername(lu.Username); err != nil {
			errs = append(errs, fmt.Errorf("user %q: %w", lu.Username, err))
			continue
		}
		if err := domain.ValidatePassword(lu.Password); err != nil {
			errs = append(errs, fmt.Errorf("user %q: %w", lu.Username, err))
		}
		if seen[lu.Username] {
			errs = append(errs, fmt.Errorf("%w: user %q appears more than once", domain.ErrValidation, lu.Username))
		}
		seen[lu.Username] = true
	}

	budgets := make(map[string][]domain.Transaction, len(export.Budgets))
	for _, budget := range export.Budgets {
		if !seen[budget.UserID] {
			continue
		}

		txns, err := convertLegacyTransactions(budget.Transactions)
		if err == nil {
			txns, err = normalizeLedger(budget.UserID, txns)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("budget of %q: %w", budget.UserID, err))
			continue
		}
		budgets[budget.UserID] = txns
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("import rejected: %w", errors.Join(errs...))
	}
	return budgets, nil
}

func convertLegacyTransactions(in []LegacyTransaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(in))
	for _, lt := range in {
		if lt.Amount == nil {
			return nil, fmt.Errorf("transaction %s: %w: amount is required", lt.ID, domain.ErrInvalidAmount)
		}

		date, err := domain.ParseDate(lt.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", lt.ID, err)
		}

		out = append(out, domain.Transaction{
			ID:          lt.ID,
			Description: lt.Description,
			Amount:      *lt.Amount,
			Type:        domain.TransactionType(lt.Type),
			Date:        date,
			Category:    lt.Category,
		})
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
