package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

const legacyExport = `{
  "users": [
    {"username": "alice", "password": "p1"},
    {"username": "bob", "password": "p2"}
  ],
  "budgets": [
    {"userId": "alice", "transactions": [
      {"id": "1704412800000", "description": "Salary", "amount": 100, "type": "income", "date": "2024-01-05T00:00:00.000Z", "userId": "alice", "category": "salary"},
      {"id": "1705708800000", "description": "Dinner", "amount": 40.5, "type": "expense", "date": "2024-01-20T00:00:00.000Z", "userId": "alice", "category": ""}
    ]},
    {"userId": "ghost", "transactions": []}
  ],
  "currentUser": "alice"
}`

func TestImportUseCase_Import(t *testing.T) {
	ctx := context.Background()

	f := newCredentialFixture(t)
	repo := mocks.NewFakeLedgerRepository()
	ledgers := newLedgerUseCase(t, repo, nil)
	uc := usecase.NewImportUseCase(f.uc, ledgers, testLogger())

	export, err := usecase.ReadLegacyExport(strings.NewReader(legacyExport))
	require.NoError(t, err)

	result, err := uc.Import(ctx, export)
	require.NoError(t, err)

	assert.Equal(t, 2, result.UsersImported)
	assert.Equal(t, 2, result.TransactionsImported)
	assert.Equal(t, []string{"ghost"}, result.OrphanedBudgets)

	login, err := f.uc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	assert.NotEqual(t, "alice", login.User.ID, "ledger must be re-keyed to the stable id")

	txns, err := ledgers.Load(ctx, login.User.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "1704412800000", txns[0].ID)
	assert.Equal(t, login.User.ID, txns[0].UserID)
	assert.Equal(t, "2024-01-20", txns[1].Date.Format(domain.DateLayout))
	assert.Equal(t, "40.5", txns[1].Amount.String())
	assert.Equal(t, domain.DefaultCategory, txns[1].Category)

	stored, err := f.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", stored.PasswordHash)
}

func TestImportUseCase_SkipsExistingUsers(t *testing.T) {
	ctx := context.Background()

	f := newCredentialFixture(t)
	repo := mocks.NewFakeLedgerRepository()
	ledgers := newLedgerUseCase(t, repo, nil)
	uc := usecase.NewImportUseCase(f.uc, ledgers, testLogger())

	existing, err := f.uc.Register(ctx, "alice", "current")
	require.NoError(t, err)

	export, err := usecase.ReadLegacyExport(strings.NewReader(legacyExport))
	require.NoError(t, err)

	result, err := uc.Import(ctx, export)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, result.SkippedUsers)
	assert.Equal(t, 1, result.UsersImported)
	assert.Zero(t, result.TransactionsImported)

	txns, err := ledgers.Load(ctx, existing.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)

	ok, err := f.uc.Verify(ctx, "alice", "current")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestImportUseCase_RejectsBadData(t *testing.T) {
	_, err := usecase.ReadLegacyExport(strings.NewReader("{not json"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	f := newCredentialFixture(t)
	uc := usecase.NewImportUseCase(f.uc, newLedgerUseCase(t, mocks.NewFakeLedgerRepository(), nil), testLogger())

	_, err = uc.Import(context.Background(), &usecase.LegacyExport{
		Users: []usecase.LegacyUser{{Username: "erin", Password: "pw"}},
		Budgets: []usecase.LegacyBudget{{
			UserID: "erin",
			Transactions: []usecase.LegacyTransaction{
				{ID: "1", Description: "x", Amount: amountPtr(1), Type: "income", Date: "yesterday"},
			},
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestImportUseCase_RejectsNullAmount(t *testing.T) {
	ctx := context.Background()

	f := newCredentialFixture(t)
	uc := usecase.NewImportUseCase(f.uc, newLedgerUseCase(t, mocks.NewFakeLedgerRepository(), nil), testLogger())

	export, err := usecase.ReadLegacyExport(strings.NewReader(`{
  "users": [{"username": "alice", "password": "p1"}],
  "budgets": [{"userId": "alice", "transactions": [
    {"id": "1", "description": "Lunch", "amount": null, "type": "expense", "date": "2024-01-05T00:00:00.000Z"}
  ]}]
}`))
	require.NoError(t, err)
	require.Nil(t, export.Budgets[0].Transactions[0].Amount)

	_, err = uc.Import(ctx, export)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.users.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "a rejected export writes nothing")
}

func TestImportUseCase_RerunAfterInvalidUser(t *testing.T) {
	ctx := context.Background()

	f := newCredentialFixture(t)
	repo := mocks.NewFakeLedgerRepository()
	ledgers := newLedgerUseCase(t, repo, nil)
	uc := usecase.NewImportUseCase(f.uc, ledgers, testLogger())

	broken := strings.Replace(legacyExport, `"username": "bob"`, `"username": "bob smith"`, 1)
	export, err := usecase.ReadLegacyExport(strings.NewReader(broken))
	require.NoError(t, err)

	_, err = uc.Import(ctx, export)
	require.ErrorIs(t, err, domain.ErrInvalidUsername)
	assert.Contains(t, err.Error(), "bob smith")

	_, err = f.users.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrUserNotFound, "alice must not be registered by a rejected import")

	export, err = usecase.ReadLegacyExport(strings.NewReader(legacyExport))
	require.NoError(t, err)

	result, err := uc.Import(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 2, result.UsersImported)
	assert.Equal(t, 2, result.TransactionsImported)
	assert.Empty(t, result.SkippedUsers)

	login, err := f.uc.Login(ctx, "alice", "p1")
	require.NoError(t, err)
	txns, err := ledgers.Load(ctx, login.User.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestImportUseCase_ResumesUserWithEmptyLedger(t *testing.T) {
	ctx := context.Background()

	f := newCredentialFixture(t)
	repo := mocks.NewFakeLedgerRepository()
	ledgers := newLedgerUseCase(t, repo, nil)
	uc := usecase.NewImportUseCase(f.uc, ledgers, testLogger())

	// Left behind by an earlier run that stopped before the budgets.
	alice, err := f.uc.Register(ctx, "alice", "p1")
	require.NoError(t, err)

	export, err := usecase.ReadLegacyExport(strings.NewReader(legacyExport))
	require.NoError(t, err)

	result, err := uc.Import(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, result.ResumedUsers)
	assert.Empty(t, result.SkippedUsers)
	assert.Equal(t, 1, result.UsersImported)
	assert.Equal(t, 2, result.TransactionsImported)

	txns, err := ledgers.Load(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, alice.ID, txns[0].UserID)

	// A third run finds both ledgers populated and leaves them alone.
	result, err = uc.Import(ctx, export)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, result.SkippedUsers)
	assert.Empty(t, result.ResumedUsers)
	assert.Zero(t, result.TransactionsImported)
}
