package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Balance(t *testing.T) {
	store := &stubStore{accounts: map[string]Account{"1": {CurrentBalance: 24098, SavingsGoal: 50000}}}
	f := NewFetcher(store)

	payload, err := f.Execute(context.Background(), ToolBalance, "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"current_balance":24098}`, string(payload))
	assert.Equal(t, 1, store.accountCalls)
}

func TestFetcher_GoalRemaining(t *testing.T) {
	store := &stubStore{accounts: map[string]Account{"1": {CurrentBalance: 100, SavingsGoal: 500}}}
	f := NewFetcher(store)

	payload, err := f.Execute(context.Background(), ToolGoal, "1")
	require.NoError(t, err)

	var got goalPayload
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, 500.0, got.Goal)
	assert.Equal(t, 100.0, got.CurrentBalance)
	assert.Equal(t, 400.0, got.Remaining)
}

func TestFetcher_GoalExceededIsNegative(t *testing.T) {
	store := &stubStore{accounts: map[string]Account{"1": {CurrentBalance: 700, SavingsGoal: 500}}}

	payload, err := NewFetcher(store).Execute(context.Background(), ToolGoal, "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"goal":500,"current_balance":700,"remaining":-200}`, string(payload))
}

func eightTransactions(base time.Time) []Transaction {
	// Deliberately unordered.
	offsets := []int{3, 7, 1, 5, 0, 6, 2, 4}
	txs := make([]Transaction, 0, len(offsets))
	for _, h := range offsets {
		txs = append(txs, Transaction{
			Type:        "expense",
			Amount:      float64(10 * (h + 1)),
			Description: time.Duration(h).String(),
			CreatedAt:   base.Add(time.Duration(h) * time.Hour),
		})
	}
	return txs
}

func TestFetcher_AdviceFiveNewest(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := &stubStore{
		accounts: map[string]Account{"1": {CurrentBalance: 300, SavingsGoal: 1000}},
		txs:      eightTransactions(base),
	}

	payload, err := NewFetcher(store).Execute(context.Background(), ToolAdvice, "1")
	require.NoError(t, err)

	require.Len(t, store.txQueries, 1)
	assert.Equal(t, TransactionQuery{AccountID: "1", Limit: 5}, store.txQueries[0])

	var got advicePayload
	require.NoError(t, json.Unmarshal(payload, &got))
	require.NotNil(t, got.Account)
	assert.Equal(t, 300.0, got.Account.CurrentBalance)
	assert.Equal(t, 1000.0, got.Account.SavingsGoal)

	require.Len(t, got.RecentTransactions, 5)
	for i, want := range []int{7, 6, 5, 4, 3} {
		assert.True(t, got.RecentTransactions[i].CreatedAt.Equal(base.Add(time.Duration(want)*time.Hour)), "position %d", i)
	}
}

func TestNewestFirst_SortsAndTruncatesUnorderedInput(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	out := newestFirst(eightTransactions(base), 5)

	require.Len(t, out, 5)
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].CreatedAt.After(out[i].CreatedAt))
	}
	assert.True(t, out[0].CreatedAt.Equal(base.Add(7*time.Hour)))
}

func TestFetcher_Deterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := &stubStore{
		accounts: map[string]Account{"1": {CurrentBalance: 300, SavingsGoal: 1000}},
		txs:      eightTransactions(base),
	}
	f := NewFetcher(store)

	first, err := f.Execute(context.Background(), ToolAdvice, "1")
	require.NoError(t, err)
	second, err := f.Execute(context.Background(), ToolAdvice, "1")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFetcher_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	store := &stubStore{err: boom}

	_, err := NewFetcher(store).Execute(context.Background(), ToolBalance, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "get_balance")
}

func TestFetcher_AccountNotFound(t *testing.T) {
	_, err := NewFetcher(&stubStore{}).Execute(context.Background(), ToolGoal, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestFetcher_UnknownKind(t *testing.T) {
	_, err := NewFetcher(&stubStore{}).Execute(context.Background(), ToolKind(99), "1")
	assert.Error(t, err)
}
