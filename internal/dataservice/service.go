package dataservice

import (
	"context"
	"errors"
	"time"
)

// ErrAccountNotFound is returned when the account row does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Store is the read-only view of the finance backend used by the tools.
type Store interface {
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	RecentTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error)
	Ping(ctx context.Context) error
	Close()
}

type Account struct {
	ID             string  `json:"-"`
	CurrentBalance float64 `json:"current_balance"`
	SavingsGoal    float64 `json:"goal"`
}

type Transaction struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionQuery selects the newest transactions of one account,
// ordered by creation time descending.
type TransactionQuery struct {
	AccountID string
	Limit     int
}

const (
	accountsTable     = "accounts"
	transactionsTable = "transactions"
)
