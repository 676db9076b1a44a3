package llm

import (
	"context"
	"fmt"
	"strings"

	"walletbot/config"

	"github.com/go-resty/resty/v2"
)

type OpenAIProvider struct {
	client *resty.Client
	config config.LLMConfig
}

type openAIRequest struct {
	Model      string           `json:"model"`
	Messages   []Message        `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	return NewOpenAIProviderWithClient(resty.New(), cfg)
}

// NewOpenAIProviderWithClient shares an existing resty client (and its transport).
func NewOpenAIProviderWithClient(client *resty.Client, cfg config.LLMConfig) *OpenAIProvider {
	return &OpenAIProvider{
		client: client,
		config: cfg,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	respMsg, err := p.ChatWithTools(ctx, messages, nil, "")
	if err != nil {
		return "", err
	}
	return respMsg.Content, nil
}

func (p *OpenAIProvider) ChatWithTools(ctx context.Context, messages []Message, tools []ToolDefinition, toolChoice string) (*Message, error) {
	reqBody := openAIRequest{
		Model:    p.config.ModelName,
		Messages: messages,
		Tools:    tools,
	}
	// tool_choice is rejected by the API when no tools are attached.
	if len(tools) > 0 {
		reqBody.ToolChoice = toolChoice
	}

	var respBody openAIResponse
	var errBody openAIError

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(&errBody).
		Post(strings.TrimRight(p.config.APIURL, "/") + "/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}

	if resp.IsError() {
		if errBody.Error.Message != "" {
			return nil, fmt.Errorf("LLM API error (%d): %s", resp.StatusCode(), errBody.Error.Message)
		}
		return nil, fmt.Errorf("LLM API error (%d): %s", resp.StatusCode(), resp.String())
	}

	if len(respBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	return &respBody.Choices[0].Message, nil
}
