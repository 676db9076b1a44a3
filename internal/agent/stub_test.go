package agent

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"walletbot/internal/dataservice"
	"walletbot/internal/llm"
)

type providerCall struct {
	Messages   []llm.Message
	Tools      []llm.ToolDefinition
	ToolChoice string
}

// stubProvider replays canned responses in order and records every call.
type stubProvider struct {
	mu        sync.Mutex
	responses []*llm.Message
	errs      []error
	calls     []providerCall
}

func (p *stubProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	msg, err := p.ChatWithTools(ctx, messages, nil, "")
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (p *stubProvider) ChatWithTools(_ context.Context, messages []llm.Message, tools []llm.ToolDefinition, toolChoice string) (*llm.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := len(p.calls)
	p.calls = append(p.calls, providerCall{
		Messages:   append([]llm.Message(nil), messages...),
		Tools:      tools,
		ToolChoice: toolChoice,
	})
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i >= len(p.responses) {
		return &llm.Message{Role: llm.RoleAssistant, Content: "no more responses"}, nil
	}
	resp := *p.responses[i]
	return &resp, nil
}

type executorCall struct {
	Kind      dataservice.ToolKind
	AccountID string
}

type stubExecutor struct {
	payload string
	err     error
	calls   []executorCall
}

func (e *stubExecutor) Execute(_ context.Context, kind dataservice.ToolKind, accountID string) (json.RawMessage, error) {
	e.calls = append(e.calls, executorCall{Kind: kind, AccountID: accountID})
	if e.err != nil {
		return nil, e.err
	}
	return json.RawMessage(e.payload), nil
}

type stubSpeech struct {
	text     string
	sttErr   error
	audio    []byte
	ttsErr   error
	heard    []byte
	language string
	spoken   []string
	voice    string
	format   string
}

func (s *stubSpeech) Transcribe(_ context.Context, audio io.Reader, _ string, language string) (string, error) {
	s.heard, _ = io.ReadAll(audio)
	s.language = language
	if s.sttErr != nil {
		return "", s.sttErr
	}
	return s.text, nil
}

func (s *stubSpeech) Synthesize(_ context.Context, text, voice, format string) ([]byte, error) {
	s.spoken = append(s.spoken, text)
	s.voice = voice
	s.format = format
	if s.ttsErr != nil {
		return nil, s.ttsErr
	}
	return s.audio, nil
}

func toolCallMsg(calls ...llm.ToolCall) *llm.Message {
	return &llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}
}

func call(id, name string) llm.ToolCall {
	return llm.ToolCall{ID: id, Type: "function", Function: llm.ToolCallFunction{Name: name, Arguments: "{}"}}
}

func textMsg(text string) *llm.Message {
	return &llm.Message{Role: llm.RoleAssistant, Content: text}
}
