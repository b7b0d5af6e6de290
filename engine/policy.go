package engine

import (
	"context"
	"fmt"
)

// Policy decides whether an operation may run. It is evaluated after the
// descriptor is resolved and before any database work, and may narrow a
// Select by adding predicates to the operation.
type Policy interface {
	Eval(context.Context, *Operation) error
}

// PolicyFunc adapts an ordinary function to a Policy.
type PolicyFunc func(context.Context, *Operation) error

// Eval returns f(ctx, op).
func (f PolicyFunc) Eval(ctx context.Context, op *Operation) error { return f(ctx, op) }

// WithPolicy sets the policy every Run and Query is checked against.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func (e *Engine) authorize(ctx context.Context, op *Operation) error {
	if e.policy == nil {
		return nil
	}
	if err := e.policy.Eval(ctx, op); err != nil {
		return fmt.Errorf("strata: %s %s: %w", op.Command, op.Info.Name, err)
	}
	return nil
}
