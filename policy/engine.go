// Package policy gates tool calls with an OPA rego policy.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Settings are the operator-controlled values the policy reads.
type Settings struct {
	TransferAllowlist []string `json:"transfer_allowlist"`
	BlockedTools      []string `json:"blocked_tools"`
}

// Input describes one tool call for evaluation.
type Input struct {
	ToolName  string          `json:"tool_name"`
	Args      json.RawMessage `json:"-"`
	CallerID  string          `json:"caller_id"`
	InputMode string          `json:"input_mode"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query    rego.PreparedEvalQuery
	settings Settings
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string, settings Settings) (*Engine, error) {
	r := rego.New(
		rego.Query("data.callbot.tools"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	if settings.TransferAllowlist == nil {
		settings.TransferAllowlist = []string{}
	}
	if settings.BlockedTools == nil {
		settings.BlockedTools = []string{}
	}
	return &Engine{query: query, settings: settings}, nil
}

// Evaluate checks a tool call against the policy.
// Returns: decision (allow or block), reason (set when blocked), error
func (e *Engine) Evaluate(ctx context.Context, in Input) (string, string, error) {
	var args interface{}
	if len(in.Args) > 0 {
		// Malformed arguments are left to the tool's own decoding.
		if err := json.Unmarshal(in.Args, &args); err != nil {
			args = nil
		}
	}
	if _, ok := args.(map[string]interface{}); !ok {
		args = map[string]interface{}{}
	}

	input := map[string]interface{}{
		"tool_name":  in.ToolName,
		"args":       args,
		"caller_id":  in.CallerID,
		"input_mode": in.InputMode,
		"settings":   e.settings,
	}
	// rego wants plain JSON values.
	raw, err := json.Marshal(input)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode policy input: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", "", fmt.Errorf("failed to encode policy input: %w", err)
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(doc))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "", nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "", "", fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	decision, _ := obj["decision"].(string)
	if decision == "" {
		decision = DecisionAllow
	}
	if decision == DecisionAllow {
		return decision, "", nil
	}

	var reasons []string
	if set, ok := obj["deny"].([]interface{}); ok {
		for _, v := range set {
			if s, ok := v.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}
	sort.Strings(reasons)
	return decision, strings.Join(reasons, "; "), nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package callbot.tools

default decision = "allow"

deny[msg] {
	input.tool_name == input.settings.blocked_tools[_]
	msg := sprintf("tool %s is disabled", [input.tool_name])
}

deny[msg] {
	input.tool_name == "transfer_call"
	count(input.settings.transfer_allowlist) > 0
	not allowed_transfer
	msg := sprintf("transfers to %v are not allowed", [object.get(input.args, "phone_number", "")])
}

allowed_transfer {
	input.args.phone_number == input.settings.transfer_allowlist[_]
}

decision = "block" {
	count(deny) > 0
}
`
