package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"walletbot/internal/dataservice"
	"walletbot/internal/llm"
	"walletbot/internal/metrics"
	"walletbot/internal/model"

	"go.uber.org/zap"
)

// ToolExecutor runs a registered tool for an account. *dataservice.Fetcher implements it.
type ToolExecutor interface {
	Execute(ctx context.Context, kind dataservice.ToolKind, accountID string) (json.RawMessage, error)
}

// ChatAgent answers one utterance with at most two model rounds: the first
// with tools attached, the second (only when a tool was called) with the
// tool result folded back in.
type ChatAgent struct {
	LLM     llm.Provider
	Data    ToolExecutor
	Persona string
	Logger  *zap.Logger
}

func NewChatAgent(p llm.Provider, data ToolExecutor, persona string, logger *zap.Logger) *ChatAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatAgent{
		LLM:     p,
		Data:    data,
		Persona: persona,
		Logger:  logger,
	}
}

func (a *ChatAgent) Name() string {
	return "ChatAgent"
}

// Process answers a text message with the agent's default persona.
func (a *ChatAgent) Process(ctx context.Context, msg *model.InternalMessage) (string, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return "", fmt.Errorf("%w: empty question", ErrBadInput)
	}
	return a.Respond(ctx, msg.Text, a.Persona, msg.AccountID)
}

// Respond runs the tool-calling protocol for one utterance.
func (a *ChatAgent) Respond(ctx context.Context, utterance, persona, accountID string) (string, error) {
	// 1. Round one: persona + question, tools attached
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: persona},
		{Role: llm.RoleUser, Content: utterance},
	}

	respMsg, err := a.chat(ctx, "first", messages, dataservice.ToolsDefinition(), llm.ToolChoiceAuto)
	if err != nil {
		return "", fmt.Errorf("first model round: %w", err)
	}

	// 2. Direct answer
	if len(respMsg.ToolCalls) == 0 {
		return respMsg.Content, nil
	}

	// 3. Only the first tool call is honored
	toolCall := respMsg.ToolCalls[0]
	if len(respMsg.ToolCalls) > 1 {
		a.Logger.Warn("Model proposed several tool calls, executing the first only",
			zap.Int("count", len(respMsg.ToolCalls)),
			zap.String("tool", toolCall.Function.Name))
	}

	kind, ok := dataservice.ParseToolKind(toolCall.Function.Name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, toolCall.Function.Name)
	}

	a.Logger.Info("Executing tool",
		zap.String("tool", kind.String()),
		zap.String("call_id", toolCall.ID),
		zap.String("account_id", accountID))

	toolResult, err := a.Data.Execute(ctx, kind, accountID)
	if err != nil {
		return "", err
	}

	// 4. Round two: echo the honored call and answer it, tools detached
	messages = append(messages,
		llm.Message{
			Role:      llm.RoleAssistant,
			Content:   respMsg.Content,
			ToolCalls: []llm.ToolCall{toolCall},
		},
		llm.Message{
			Role:       llm.RoleTool,
			Content:    string(toolResult),
			ToolCallID: toolCall.ID,
		},
	)

	finalResp, err := a.chat(ctx, "second", messages, nil, "")
	if err != nil {
		return "", fmt.Errorf("second model round: %w", err)
	}
	if len(finalResp.ToolCalls) > 0 {
		a.Logger.Warn("Ignoring tool call requested in second round",
			zap.String("tool", finalResp.ToolCalls[0].Function.Name))
	}

	return finalResp.Content, nil
}

func (a *ChatAgent) chat(ctx context.Context, round string, messages []llm.Message, tools []llm.ToolDefinition, toolChoice string) (*llm.Message, error) {
	start := time.Now()
	resp, err := a.LLM.ChatWithTools(ctx, messages, tools, toolChoice)
	metrics.ObserveModelRound(round, time.Since(start), err)
	if err != nil {
		a.Logger.Error("LLM call failed", zap.String("round", round), zap.Error(err))
		return nil, err
	}
	return resp, nil
}
