package dataservice

import (
	"context"
	"sort"
	"sync"
)

// stubStore is an in-memory Store that records the queries it receives.
type stubStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	txs      []Transaction
	err      error

	accountCalls int
	txQueries    []TransactionQuery
}

func (s *stubStore) GetAccount(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountCalls++
	if s.err != nil {
		return nil, s.err
	}
	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	acct.ID = id
	return &acct, nil
}

// RecentTransactions honors the limit and ordering the way a database would.
func (s *stubStore) RecentTransactions(_ context.Context, q TransactionQuery) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txQueries = append(s.txQueries, q)
	if s.err != nil {
		return nil, s.err
	}
	out := append([]Transaction(nil), s.txs...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *stubStore) Ping(context.Context) error { return s.err }

func (s *stubStore) Close() {}
