package domain

// AnyVersion disables the optimistic version check on save.
const AnyVersion int64 = -1

// UserLedger is the ordered transaction history of one user.
type UserLedger struct {
	OwnerID      string
	Transactions []Transaction
	// Version increases by one on every save; zero means never saved.
	Version int64
}

// NewUserLedger returns an empty, unsaved ledger for owner.
func NewUserLedger(ownerID string) *UserLedger {
	return &UserLedger{OwnerID: ownerID, Transactions: []Transaction{}}
}

// Snapshot returns a copy of the transactions that callers may keep.
func (l *UserLedger) Snapshot() []Transaction {
	out := make([]Transaction, len(l.Transactions))
	copy(out, l.Transactions)
	return out
}

// IndexOf returns the position of the transaction with id, or -1.
func (l *UserLedger) IndexOf(id string) int {
	for i := range l.Transactions {
		if l.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}
