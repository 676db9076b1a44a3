package dataservice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// PostgRESTStore reads the same tables through a Supabase/PostgREST endpoint.
type PostgRESTStore struct {
	client *resty.Client
}

type postgrestAccount struct {
	CurrentBalance float64  `json:"current_balance"`
	SavingsGoal    *float64 `json:"savings_goal"`
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const pgrstSingleObject = "application/vnd.pgrst.object+json"

func NewPostgRESTStore(baseURL, serviceKey string) *PostgRESTStore {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey)
	return &PostgRESTStore{client: client}
}

func (s *PostgRESTStore) Close() {}

func (s *PostgRESTStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"select": "id", "limit": "1"}).
		Get("/" + accountsTable)
	if err != nil {
		return fmt.Errorf("ping postgrest: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ping postgrest: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *PostgRESTStore) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var row postgrestAccount
	var errBody postgrestError

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", pgrstSingleObject).
		SetQueryParams(map[string]string{
			"select": "current_balance,savings_goal",
			"id":     "eq." + accountID,
		}).
		SetResult(&row).
		SetError(&errBody).
		Get("/" + accountsTable)
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}
	// A single-object request matching zero rows is answered with 406.
	if resp.StatusCode() == http.StatusNotAcceptable {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("query account: status %d: %s", resp.StatusCode(), errMessage(errBody, resp))
	}

	acct := &Account{ID: accountID, CurrentBalance: row.CurrentBalance}
	if row.SavingsGoal != nil {
		acct.SavingsGoal = *row.SavingsGoal
	}
	return acct, nil
}

func (s *PostgRESTStore) RecentTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	var rows []Transaction
	var errBody postgrestError

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":     "type,amount,description,created_at",
			"account_id": "eq." + q.AccountID,
			"order":      "created_at.desc",
			"limit":      strconv.Itoa(q.Limit),
		}).
		SetResult(&rows).
		SetError(&errBody).
		Get("/" + transactionsTable)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("query transactions: status %d: %s", resp.StatusCode(), errMessage(errBody, resp))
	}
	return rows, nil
}

func errMessage(e postgrestError, resp *resty.Response) string {
	if e.Message != "" {
		return e.Message
	}
	return resp.String()
}
