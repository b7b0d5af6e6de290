package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/engine"
)

// Viewer represents the authenticated user making a request.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant, empty if not applicable.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, nil if absent.
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

// DenyIfNoViewer denies operations without a viewer in the context.
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("strata/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole allows operations of viewers with the role.
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole allows operations of viewers with any of the roles.
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
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

// IsOwner allows writes of entities whose column holds the viewer's ID.
func IsOwner(column string) Rule {
	return RuleFunc(func(ctx context.Context, op *engine.Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || op.Command == engine.OpSelect {
			return Skip
		}
		v, ok := columnValue(op, column)
		if !ok {
			return Skip
		}
		if v == viewer.GetID() {
			return Allow
		}
		return Skip
	})
}

// TenantRule denies writes of entities whose column does not hold the
// viewer's tenant. Operations of viewers without a tenant are skipped.
func TenantRule(column string) Rule {
	return RuleFunc(func(ctx context.Context, op *engine.Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" || op.Command == engine.OpSelect {
			return Skip
		}
		v, ok := columnValue(op, column)
		if !ok {
			return Skip
		}
		if v != viewer.GetTenantID() {
			return Denyf("strata/privacy: tenant mismatch on %s", op.Info.Name)
		}
		return Skip
	})
}

// TenantFilter restricts selects to rows of the viewer's tenant. Selects
// without a viewer tenant are denied.
func TenantFilter(column string) Rule {
	return RuleFunc(func(ctx context.Context, op *engine.Operation) error {
		if op.Command != engine.OpSelect {
			return Skip
		}
		if _, ok := op.Info.Column(column); !ok {
			return Skip
		}
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" {
			return Denyf("strata/privacy: tenant required to read %s", op.Info.Name)
		}
		op.Predicates = append(op.Predicates, sql.FieldEQ(column, viewer.GetTenantID()))
		return Skip
	})
}

// columnValue returns the value of the column of the operation's entity
// as a string. Absent columns and NULL values report false.
func columnValue(op *engine.Operation, column string) (string, bool) {
	c, ok := op.Info.Column(column)
	if !ok {
		return "", false
	}
	switch v := c.Get(op.Entity).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case *int64:
		if v == nil {
			return "", false
		}
		return fmt.Sprint(*v), true
	default:
		return fmt.Sprint(v), true
	}
}
