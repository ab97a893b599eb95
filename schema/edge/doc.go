// Package edge provides builders for the relations between rows.
//
// Two directions are supported:
//
//   - edge.To: has-many. The foreign key lives on the target rows.
//   - edge.From: belongs-to. The foreign key lives on the owning row.
//
// Edges without a Type point back at the schema they are declared on,
// which is how a mixin describes a hierarchy without knowing its host:
//
//	edge.From("parent").Field("parent_id")
//	edge.To("children").Field("parent_id")
//
// Eager names edges that are loaded together with every returned row. An
// edge that names itself walks the whole hierarchy:
//
//	edge.To("recursive_children").Field("parent_id").Eager("recursive_children")
package edge
