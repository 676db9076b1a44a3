package dataservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads accounts and transactions straight from Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ids are compared as text so integer and uuid keys both work.
func (s *PostgresStore) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	acct := &Account{ID: accountID}
	err := s.pool.QueryRow(ctx,
		`SELECT current_balance::float8, COALESCE(savings_goal, 0)::float8
		 FROM `+accountsTable+` WHERE id::text = $1`,
		accountID).Scan(&acct.CurrentBalance, &acct.SavingsGoal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return acct, nil
}

func (s *PostgresStore) RecentTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(type, ''), amount::float8, COALESCE(description, ''), created_at
		 FROM `+transactionsTable+` WHERE account_id::text = $1
		 ORDER BY created_at DESC LIMIT $2`,
		q.AccountID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.Type, &tx.Amount, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return out, nil
}
