package core

import (
	"context"
	"errors"
	"fmt"

	"walletbot/internal/agent"
	"walletbot/internal/model"

	"go.uber.org/zap"
)

var ErrNoAgent = errors.New("no agent registered")

// AccountResolver maps the sender of a message to a backend account.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, msg *model.InternalMessage) (string, error)
}

// StaticResolver binds every caller to one configured account.
type StaticResolver struct {
	AccountID string
}

func (r StaticResolver) ResolveAccount(_ context.Context, _ *model.InternalMessage) (string, error) {
	if r.AccountID == "" {
		return "", errors.New("no default account configured")
	}
	return r.AccountID, nil
}

type Dispatcher struct {
	Agents   map[string]agent.Agent
	Default  string
	Accounts AccountResolver
	Logger   *zap.Logger
}

func NewDispatcher(accounts AccountResolver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Agents:   make(map[string]agent.Agent),
		Accounts: accounts,
		Logger:   logger,
	}
}

// RegisterAgent adds a; the first registered agent becomes the default route.
func (d *Dispatcher) RegisterAgent(a agent.Agent) {
	d.Agents[a.Name()] = a
	if d.Default == "" {
		d.Default = a.Name()
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg *model.InternalMessage) (string, error) {
	d.Logger.Info("Dispatching message",
		zap.String("platform", msg.Platform),
		zap.String("user_id", msg.UserID),
		zap.Int("text_len", len(msg.Text)))

	targetAgent := d.Agents[d.Default]
	if targetAgent == nil {
		return "", ErrNoAgent
	}

	accountID, err := d.Accounts.ResolveAccount(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}
	msg.AccountID = accountID

	return targetAgent.Process(ctx, msg)
}

// AccountFor exposes account resolution to adapters that bypass Dispatch (voice).
func (d *Dispatcher) AccountFor(ctx context.Context, msg *model.InternalMessage) (string, error) {
	return d.Accounts.ResolveAccount(ctx, msg)
}
