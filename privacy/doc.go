// Package privacy provides rules for engine policies.
//
// A Policy is an ordered list of rules evaluated before an operation
// reaches the database. Each rule returns a decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: rejects the operation and stops evaluation
//   - Skip (or nil): continues with the next rule
//
// A policy whose rules all skip allows the operation. End a policy with
// AlwaysDenyRule to deny by default:
//
//	eng, err := engine.New(drv, engine.WithPolicy(privacy.Policy{
//		privacy.DenyIfNoViewer(),
//		privacy.HasRole("admin"),
//		privacy.OnCommand(privacy.TenantRule("tenant_id"), engine.OpUpdate, engine.OpDelete),
//		privacy.TenantFilter("tenant_id"),
//		privacy.AlwaysDenyRule(),
//	}))
//
// The viewer is carried by the context:
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "42", TenantID: "acme"})
//
// Denied operations fail with an error matching Deny:
//
//	if _, err := eng.Update(ctx, doc); errors.Is(err, privacy.Deny) {
//		// forbidden
//	}
package privacy
