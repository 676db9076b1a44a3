package agent

import (
	"context"
	"errors"

	"walletbot/internal/model"
)

var (
	// ErrBadInput marks caller mistakes (missing audio, empty question).
	ErrBadInput = errors.New("bad input")
	// ErrUnknownTool is returned when the model calls a function that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)

type Agent interface {
	Name() string
	Process(ctx context.Context, msg *model.InternalMessage) (string, error)
}
