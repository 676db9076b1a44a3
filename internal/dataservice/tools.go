package dataservice

import (
	"walletbot/internal/llm"
)

// ToolKind enumerates the functions the model may call. Fetcher.Execute
// switches over it, so adding a kind means adding a case there.
type ToolKind int

const (
	ToolBalance ToolKind = iota + 1
	ToolGoal
	ToolAdvice
)

var toolNames = map[ToolKind]string{
	ToolBalance: "get_balance",
	ToolGoal:    "get_savings_goal",
	ToolAdvice:  "get_spending_advice",
}

func (k ToolKind) String() string {
	if name, ok := toolNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseToolKind maps a model-supplied function name to a ToolKind.
func ParseToolKind(name string) (ToolKind, bool) {
	for k, n := range toolNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

func emptyParameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

var toolsDefinition = []llm.ToolDefinition{
	{
		Type: "function",
		Function: llm.FunctionDefinition{
			Name:        ToolBalance.String(),
			Description: "Returns the current available balance of the user's account.",
			Parameters:  emptyParameters(),
		},
	},
	{
		Type: "function",
		Function: llm.FunctionDefinition{
			Name:        ToolGoal.String(),
			Description: "Returns the savings goal amount, the current balance and how much is still missing to reach the goal.",
			Parameters:  emptyParameters(),
		},
	},
	{
		Type: "function",
		Function: llm.FunctionDefinition{
			Name:        ToolAdvice.String(),
			Description: "Returns the account balance, savings goal and the most recent transactions so a short spending tip can be given.",
			Parameters:  emptyParameters(),
		},
	},
}

// ToolsDefinition returns the function definitions attached to every
// first-round model call, in a fixed order.
func ToolsDefinition() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, len(toolsDefinition))
	copy(out, toolsDefinition)
	return out
}
