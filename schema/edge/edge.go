package edge

// Kind describes which side of the relation holds the foreign key.
type Kind uint8

const (
	// KindTo is a has-many (or has-one) edge. The foreign key column lives
	// on the rows the edge returns.
	KindTo Kind = iota + 1
	// KindFrom is a belongs-to edge. The foreign key column lives on the
	// row the edge starts from.
	KindFrom
)

// String returns the edge kind name.
func (k Kind) String() string {
	switch k {
	case KindTo:
		return "to"
	case KindFrom:
		return "from"
	default:
		return "invalid"
	}
}

// A Descriptor for edge configuration.
type Descriptor struct {
	Name    string   // edge name.
	Kind    Kind     // side of the foreign key.
	Type    string   // target type name. Empty means the owning schema.
	Field   string   // foreign key column.
	Unique  bool     // unique edge returns at most one row.
	Eager   []string // edges loaded on every row this edge returns.
	Comment string   // edge comment.
}

// Inverse reports whether the edge is a belongs-to edge.
func (d *Descriptor) Inverse() bool { return d.Kind == KindFrom }

// Self reports whether the edge points back at the schema it is declared on.
func (d *Descriptor) Self() bool { return d.Type == "" }

// Recursive reports whether rows returned by the edge load the same edge
// again, walking the hierarchy until it ends.
func (d *Descriptor) Recursive() bool {
	for _, name := range d.Eager {
		if name == d.Name {
			return true
		}
	}
	return false
}

// To defines an association edge. The rows it returns reference the
// owning row through the column set by Field.
//
//	edge.To("children").Field("parent_id")
func To(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: KindTo}}
}

// From defines a back-reference edge. The owning row references the row
// it returns through the column set by Field.
//
//	edge.From("parent").Field("parent_id").Unique()
func From(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Kind: KindFrom, Unique: true}}
}

// Builder for edges.
type Builder struct {
	desc *Descriptor
}

// Type sets the target type name. Edges without a type point at the
// schema they are attached to.
func (b *Builder) Type(name string) *Builder {
	b.desc.Type = name
	return b
}

// Field sets the foreign key column of the edge.
func (b *Builder) Field(column string) *Builder {
	b.desc.Field = column
	return b
}

// Unique sets the edge type to be unique. Basically, it limits the edge to
// be one of the two: one-to-one or many-to-one.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Eager lists edges of the target type that are loaded together with the
// rows of this edge. Naming the edge itself makes it recursive.
//
//	edge.To("recursive_children").Field("parent_id").Eager("recursive_children")
func (b *Builder) Eager(edges ...string) *Builder {
	b.desc.Eager = append(b.desc.Eager, edges...)
	return b
}

// Comment used to put annotations on the schema.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the modelkit.Edge interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
