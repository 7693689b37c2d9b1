package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManagerCommits(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE ledgers SET version").
		WithArgs(int64(2), "owner-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	err := newTxManagerWithPool(mockPool).WithTx(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(), "UPDATE ledgers SET version = $1 WHERE owner_id = $2", int64(2), "owner-1")
		return err
	})
	require.NoError(t, err)
	assertExpectations(t, mockPool)
}

func TestTxManagerFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		expect  func(pgxmock.PgxPoolIface)
		fnErr   error
		wantErr error
		runsFn  bool
	}{
		{
			name:    "begin fails",
			expect:  func(p pgxmock.PgxPoolIface) { p.ExpectBegin().WillReturnError(boom) },
			wantErr: boom,
		},
		{
			name: "work fails",
			expect: func(p pgxmock.PgxPoolIface) {
				p.ExpectBegin()
				p.ExpectRollback()
			},
			fnErr:   boom,
			wantErr: boom,
			runsFn:  true,
		},
		{
			name: "commit fails",
			expect: func(p pgxmock.PgxPoolIface) {
				p.ExpectBegin()
				p.ExpectCommit().WillReturnError(boom)
				p.ExpectRollback()
			},
			wantErr: boom,
			runsFn:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			tt.expect(mockPool)

			ran := false
			err := newTxManagerWithPool(mockPool).WithTx(context.Background(), func(pgx.Tx) error {
				ran = true
				return tt.fnErr
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.runsFn, ran)
		})
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet())
}
