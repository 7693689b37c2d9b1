package domain

import "time"

// User is a credential record. ID is stable for the life of the account and
// owns the ledger; Username is the login key and may change.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
