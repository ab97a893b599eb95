// Package privacy evaluates authorization policies before mutations reach
// the database.
//
// A MutationPolicy is an ordered list of rules. Each rule returns Allow,
// Deny or Skip:
//
//   - Allow: permits the mutation and stops evaluation
//   - Deny: rejects the mutation and stops evaluation
//   - Skip: continues with the next rule
//
// When every rule skips, the mutation is allowed. End a policy with
// AlwaysDenyRule to deny by default.
//
// Policies become hooks and attach to store tables:
//
//	posts.Use(privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.IsOwner("author_id"),
//	    privacy.AlwaysDenyRule(),
//	}.Hook())
//
// The viewer is read from the context:
//
//	ctx := privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "42",
//	    Roles:  []string{"editor"},
//	})
//	row, err := posts.Create().Set("title", "Hello").Save(ctx)
//
// A denied mutation fails with an error wrapping Deny:
//
//	if errors.Is(err, privacy.Deny) { ... }
package privacy
