package dataservice

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"walletbot/internal/metrics"
)

// RecentTransactionsLimit is how many transactions the advice tool sees.
const RecentTransactionsLimit = 5

// Fetcher runs the backend queries behind each tool and shapes the payload
// handed back to the model.
type Fetcher struct {
	store Store
}

func NewFetcher(store Store) *Fetcher {
	return &Fetcher{store: store}
}

type balancePayload struct {
	CurrentBalance float64 `json:"current_balance"`
}

type goalPayload struct {
	Goal           float64 `json:"goal"`
	CurrentBalance float64 `json:"current_balance"`
	Remaining      float64 `json:"remaining"`
}

type advicePayload struct {
	Account            *Account      `json:"account"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

// Execute runs the tool for accountID and returns its JSON payload.
func (f *Fetcher) Execute(ctx context.Context, kind ToolKind, accountID string) (json.RawMessage, error) {
	start := time.Now()
	payload, err := f.execute(ctx, kind, accountID)
	metrics.ObserveTool(kind.String(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", kind, err)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tool %s: encode payload: %w", kind, err)
	}
	return out, nil
}

func (f *Fetcher) execute(ctx context.Context, kind ToolKind, accountID string) (any, error) {
	switch kind {
	case ToolBalance:
		acct, err := f.store.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return balancePayload{CurrentBalance: acct.CurrentBalance}, nil

	case ToolGoal:
		acct, err := f.store.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		// Negative when the goal is already exceeded.
		return goalPayload{
			Goal:           acct.SavingsGoal,
			CurrentBalance: acct.CurrentBalance,
			Remaining:      acct.SavingsGoal - acct.CurrentBalance,
		}, nil

	case ToolAdvice:
		acct, err := f.store.GetAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		txs, err := f.store.RecentTransactions(ctx, TransactionQuery{
			AccountID: accountID,
			Limit:     RecentTransactionsLimit,
		})
		if err != nil {
			return nil, err
		}
		return advicePayload{
			Account:            acct,
			RecentTransactions: newestFirst(txs, RecentTransactionsLimit),
		}, nil
	}
	return nil, fmt.Errorf("no handler for tool kind %d", int(kind))
}

// newestFirst returns at most limit transactions ordered by CreatedAt descending.
func newestFirst(txs []Transaction, limit int) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
