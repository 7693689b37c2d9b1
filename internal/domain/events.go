package domain

import "time"

// Event types
const (
	EventTypeTransactionAppended = "transaction.appended"
	EventTypeLedgerReplaced      = "ledger.replaced"
	EventTypeUserRegistered      = "user.registered"
	EventTypeUserRenamed         = "user.renamed"
)

// Event is a notification that something changed in a user's data.
type Event struct {
	Type       string
	OwnerID    string
	OccurredAt time.Time
	Payload    any
}

// TransactionAppendedEvent payload
type TransactionAppendedEvent struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	LedgerVersion int64  `json:"ledger_version"`
}

// LedgerReplacedEvent payload
type LedgerReplacedEvent struct {
	TransactionCount int   `json:"transaction_count"`
	LedgerVersion    int64 `json:"ledger_version"`
}

// UserRegisteredEvent payload
type UserRegisteredEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// UserRenamedEvent payload
type UserRenamedEvent struct {
	UserID      string `json:"user_id"`
	OldUsername string `json:"old_username"`
	NewUsername string `json:"new_username"`
}
