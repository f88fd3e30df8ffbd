// Package policy evaluates session access decisions with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the prepared OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the given policy content once.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.session_access.decision"),
		rego.Module("session_access.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// AccessInput is the input document for a session access decision.
type AccessInput struct {
	App       string `json:"app"`
	User      string `json:"user"`
	OwnerApp  string `json:"owner_app"`
	OwnerUser string `json:"owner_user"`
}

// Evaluate returns the access decision ("allow" or "deny") for the given
// requester/owner pair.
func (e *Engine) Evaluate(ctx context.Context, input AccessInput) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so this only happens with a
		// broken replacement policy. Fail closed.
		return "deny", nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "deny", nil
}

// DefaultPolicy grants access only to the session's owner. A session must
// never be visible under a different (app, user) pair.
const DefaultPolicy = `
package session_access

default decision = "deny"

decision = "allow" {
	input.app == input.owner_app
	input.user == input.owner_user
}
`
