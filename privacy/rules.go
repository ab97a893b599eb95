package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/modelkit/modelkit"
)

// Viewer represents the authenticated user making a request.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant, or "" when not applicable.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, or nil.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string { return v.UserID }

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string { return v.Roles }

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// DenyIfNoViewer returns a rule that denies the mutation when no viewer
// is present in the context.
func DenyIfNoViewer() MutationRule {
	return ContextMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("modelkit/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows the mutation when the viewer has the
// given role, and skips otherwise.
func HasRole(role string) MutationRule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule that allows the mutation when the viewer has
// one of the given roles, and skips otherwise.
func HasAnyRole(roles ...string) MutationRule {
	return ContextMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range roles {
			if slices.Contains(viewer.GetRoles(), role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule that allows the mutation when the pending value
// of field equals the viewer ID.
//
//	privacy.MutationPolicy{
//		privacy.DenyIfNoViewer(),
//		privacy.IsOwner("author_id"),
//		privacy.AlwaysDenyRule(),
//	}
func IsOwner(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m modelkit.Mutation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		value, ok := m.Field(field)
		if !ok || value == nil {
			return Skip
		}
		if fmt.Sprint(value) == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// TenantRule returns a rule that denies mutations whose pending value of
// field differs from the viewer's tenant. A matching tenant is allowed.
func TenantRule(field string) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, m modelkit.Mutation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" {
			return Skip
		}
		value, ok := m.Field(field)
		if !ok {
			return Skip
		}
		if fmt.Sprint(value) == viewer.GetTenantID() {
			return Allow
		}
		return Denyf("modelkit/privacy: tenant mismatch")
	})
}

// DenyFieldChange returns a rule that denies create and update mutations
// setting any of the given fields. Fields written by hooks that run before
// the policy count as set.
//
//	// Only moderators may toggle the status column.
//	privacy.MutationPolicy{
//		privacy.HasRole("moderator"),
//		privacy.DenyFieldChange("is_active"),
//	}
func DenyFieldChange(fields ...string) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, m modelkit.Mutation) error {
		for _, f := range fields {
			if _, ok := m.Field(f); ok {
				return Denyf("modelkit/privacy: field %q cannot be changed", f)
			}
		}
		return Skip
	})
	return OnMutationOperation(rule, modelkit.OpCreate|modelkit.OpUpdate|modelkit.OpUpdateOne)
}
