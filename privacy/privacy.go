package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/strata/engine"
)

// Policy decisions. Rules return them, possibly wrapped; use errors.Is to
// check a decision.
var (
	// Allow terminates the evaluation with an allow decision.
	Allow = errors.New("strata/privacy: allow rule")

	// Deny terminates the evaluation with a deny decision.
	Deny = errors.New("strata/privacy: deny rule")

	// Skip continues the evaluation with the next rule.
	Skip = errors.New("strata/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Rule decides on an operation.
type Rule interface {
	EvalOperation(context.Context, *engine.Operation) error
}

// RuleFunc adapts an ordinary function to a Rule.
type RuleFunc func(context.Context, *engine.Operation) error

// EvalOperation returns f(ctx, op).
func (f RuleFunc) EvalOperation(ctx context.Context, op *engine.Operation) error {
	return f(ctx, op)
}

// Policy is an ordered list of rules. It implements engine.Policy.
type Policy []Rule

var _ engine.Policy = Policy(nil)

// Eval evaluates the rules in order. A decision attached to the context
// with DecisionContext takes precedence over the rules. Allow and a policy
// where every rule skips yield nil.
func (p Policy) Eval(ctx context.Context, op *engine.Operation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range p {
		switch decision := rule.EvalOperation(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// AlwaysAllowRule returns a rule that always allows.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always denies.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule returns a rule deciding from the context alone. Returning
// nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *engine.Operation) error {
		return eval(ctx)
	})
}

// OnCommand evaluates rule only for the given commands and skips others.
func OnCommand(rule Rule, cmds ...engine.Command) Rule {
	return RuleFunc(func(ctx context.Context, op *engine.Operation) error {
		if slices.Contains(cmds, op.Command) {
			return rule.EvalOperation(ctx, op)
		}
		return Skip
	})
}

// OnEntity evaluates rule only for the named entities and skips others.
func OnEntity(rule Rule, names ...string) Rule {
	return RuleFunc(func(ctx context.Context, op *engine.Operation) error {
		if op.Info != nil && slices.Contains(names, op.Info.Name) {
			return rule.EvalOperation(ctx, op)
		}
		return Skip
	})
}

// DenyCommandRule returns a rule denying the given commands.
func DenyCommandRule(cmds ...engine.Command) Rule {
	return OnCommand(RuleFunc(func(_ context.Context, op *engine.Operation) error {
		return Denyf("strata/privacy: command %s is not allowed", op.Command)
	}), cmds...)
}

// AllowCommandRule returns a rule allowing the given commands.
func AllowCommandRule(cmds ...engine.Command) Rule {
	return OnCommand(fixedDecision{Allow}, cmds...)
}

type decisionCtxKey struct{}

// DecisionContext returns a context carrying a decision that overrides
// every policy, such as Allow for internal jobs.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the decision attached to the context.
// An Allow decision is reported as nil.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalOperation(context.Context, *engine.Operation) error {
	return f.decision
}
