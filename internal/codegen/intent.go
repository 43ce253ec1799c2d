package codegen

import (
	"context"
	"fmt"
	"strings"

	"resource2code/internal/llm"
)

type Intent string

const (
	IntentCodeGen    Intent = "CodeGen"
	IntentExecuteSQL Intent = "ExecuteSQL"
	IntentOther      Intent = "Other"
)

func ParseIntent(s string) (Intent, error) {
	switch v := Intent(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))); v {
	case IntentCodeGen, IntentExecuteSQL, IntentOther:
		return v, nil
	default:
		return "", fmt.Errorf("invalid intent %q", strings.TrimSpace(s))
	}
}

// AnalyzeIntent asks agent to classify question.
func AnalyzeIntent(ctx context.Context, agent llm.Agent, question string) (Intent, error) {
	reply, err := agent.Generate(ctx, fmt.Sprintf(intentPrompt, question))
	if err != nil {
		return "", fmt.Errorf("analyze intent: %w", err)
	}
	intent, err := ParseIntent(reply)
	if err != nil {
		return "", fmt.Errorf("LLM returned an unexpected intent: %w", err)
	}
	return intent, nil
}
