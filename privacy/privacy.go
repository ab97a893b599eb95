package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelkit/modelkit"
)

// Policy decision sentinel errors. Rules return them, possibly wrapped,
// to end or continue the evaluation of a policy:
//
//	if errors.Is(err, privacy.Deny) { ... }
var (
	// Allow ends the evaluation and lets the mutation through.
	Allow = errors.New("modelkit/privacy: allow rule")

	// Deny ends the evaluation and rejects the mutation.
	Deny = errors.New("modelkit/privacy: deny rule")

	// Skip passes the decision to the next rule.
	Skip = errors.New("modelkit/privacy: skip rule")
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

// MutationRule decides whether a mutation is allowed. A rule may also
// rewrite the pending values of the mutation.
type MutationRule interface {
	EvalMutation(context.Context, modelkit.Mutation) error
}

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, modelkit.Mutation) error

// EvalMutation returns f(ctx, m).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, m modelkit.Mutation) error {
	return f(ctx, m)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() MutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() MutationRule {
	return fixedDecision{Deny}
}

// ContextMutationRule creates a rule from a function of the context only.
// Returning nil is equivalent to returning Skip.
func ContextMutationRule(eval func(context.Context) error) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, _ modelkit.Mutation) error {
		return eval(ctx)
	})
}

// OnMutationOperation evaluates the given rule only on a given mutation operation.
func OnMutationOperation(rule MutationRule, op modelkit.Op) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m modelkit.Mutation) error {
		if m.Op().Is(op) {
			return rule.EvalMutation(ctx, m)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying specified mutation operation.
func DenyMutationOperationRule(op modelkit.Op) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m modelkit.Mutation) error {
		return Denyf("modelkit/privacy: operation %s is not allowed", m.Op())
	})
	return OnMutationOperation(rule, op)
}

// AllowMutationOperationRule returns a rule allowing specified mutation operation.
func AllowMutationOperationRule(op modelkit.Op) MutationRule {
	rule := MutationRuleFunc(func(context.Context, modelkit.Mutation) error {
		return Allow
	})
	return OnMutationOperation(rule, op)
}

// MutationPolicy combines multiple mutation rules into a single policy.
// Rules are evaluated in order. The first decision other than Skip ends
// the evaluation; a policy where every rule skips allows the mutation.
type MutationPolicy []MutationRule

// EvalMutation evaluates a mutation against the policy. An Allow decision
// is returned as a nil error.
func (policy MutationPolicy) EvalMutation(ctx context.Context, m modelkit.Mutation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range policy {
		switch decision := rule.EvalMutation(ctx, m); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Hook returns a hook that evaluates the policy before the mutation is
// executed. A denied mutation fails with the decision error.
//
//	posts.Use(privacy.MutationPolicy{
//		privacy.DenyIfNoViewer(),
//		privacy.HasRole("editor"),
//		privacy.AlwaysDenyRule(),
//	}.Hook())
func (policy MutationPolicy) Hook() modelkit.Hook {
	return func(next modelkit.Mutator) modelkit.Mutator {
		return modelkit.MutateFunc(func(ctx context.Context, m modelkit.Mutation) (modelkit.Value, error) {
			if err := policy.EvalMutation(ctx, m); err != nil {
				return nil, err
			}
			return next.Mutate(ctx, m)
		})
	}
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it. Policies evaluated under the returned
// context return that decision without running their rules.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
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

func (f fixedDecision) EvalMutation(context.Context, modelkit.Mutation) error {
	return f.decision
}
