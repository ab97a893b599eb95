package sql

// Predicate is a where predicate. It writes itself into the Builder of the
// statement it is attached to, so placeholders are numbered in the order
// the statement is rendered.
type Predicate struct {
	fns []func(*Builder)
}

// P creates a new predicate.
//
//	P(func(b *Builder) {
//		b.Ident("slug").WriteString(" IS NOT NULL")
//	})
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append appends a new function to the predicate callbacks.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

func (p *Predicate) build(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// Query returns the predicate rendered with the default dialect. It is
// mostly useful in tests and cache keys.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{}
	p.build(b)
	return b.Query()
}

func binary(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(op).Arg(v)
	})
}

// EQ returns a "=" predicate.
func EQ(col string, value any) *Predicate { return binary(col, " = ", value) }

// NEQ returns a "<>" predicate.
func NEQ(col string, value any) *Predicate { return binary(col, " <> ", value) }

// GT returns a ">" predicate.
func GT(col string, value any) *Predicate { return binary(col, " > ", value) }

// GTE returns a ">=" predicate.
func GTE(col string, value any) *Predicate { return binary(col, " >= ", value) }

// LT returns a "<" predicate.
func LT(col string, value any) *Predicate { return binary(col, " < ", value) }

// LTE returns a "<=" predicate.
func LTE(col string, value any) *Predicate { return binary(col, " <= ", value) }

// Like returns a LIKE predicate. The pattern is passed as is.
func Like(col, pattern string) *Predicate { return binary(col, " LIKE ", pattern) }

// NotLike returns a NOT LIKE predicate. The pattern is passed as is.
func NotLike(col, pattern string) *Predicate { return binary(col, " NOT LIKE ", pattern) }

// Contains is a helper predicate that checks substring using the LIKE
// predicate. Wildcards inside substr keep their LIKE meaning.
func Contains(col, substr string) *Predicate { return Like(col, "%"+substr+"%") }

// HasPrefix is a helper predicate that checks prefix using the LIKE predicate.
func HasPrefix(col, prefix string) *Predicate { return Like(col, prefix+"%") }

// HasSuffix is a helper predicate that checks suffix using the LIKE predicate.
func HasSuffix(col, suffix string) *Predicate { return Like(col, "%"+suffix) }

// In returns the `IN` predicate. An empty list matches no row.
func In(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return False()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN ").Wrap(func(b *Builder) { b.Args(args...) })
	})
}

// NotIn returns the `NOT IN` predicate. An empty list matches every row.
func NotIn(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return True()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" NOT IN ").Wrap(func(b *Builder) { b.Args(args...) })
	})
}

// IsNull returns the `IS NULL` predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NULL") })
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") })
}

// False returns a predicate that is always false.
func False() *Predicate {
	return P(func(b *Builder) { b.WriteString("1 = 0") })
}

// True returns a predicate that is always true.
func True() *Predicate {
	return P(func(b *Builder) { b.WriteString("1 = 1") })
}

func join(op string, preds []*Predicate) *Predicate {
	return P(func(b *Builder) {
		b.Wrap(func(b *Builder) {
			for i, p := range preds {
				if i > 0 {
					b.WriteString(op)
				}
				p.build(b)
			}
		})
	})
}

// And combines all given predicates with AND between them.
func And(preds ...*Predicate) *Predicate { return join(" AND ", preds) }

// Or combines all given predicates with OR between them.
func Or(preds ...*Predicate) *Predicate { return join(" OR ", preds) }

// Not wraps the given predicate with the not predicate.
//
//	Not(Or(EQ("name", "foo"), EQ("name", "bar")))
func Not(pred *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT ").Wrap(pred.build)
	})
}

// FieldEQ returns a selector predicate that checks if the field equals the value.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ returns a selector predicate that checks if the field does not equal the value.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldGT returns a selector predicate for "field > v".
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE returns a selector predicate for "field >= v".
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT returns a selector predicate for "field < v".
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE returns a selector predicate for "field <= v".
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldLike returns a selector predicate matching the field against a LIKE pattern.
func FieldLike(name, pattern string) func(*Selector) {
	return func(s *Selector) { s.Where(Like(s.C(name), pattern)) }
}

// FieldNotLike returns the negation of FieldLike.
func FieldNotLike(name, pattern string) func(*Selector) {
	return func(s *Selector) { s.Where(NotLike(s.C(name), pattern)) }
}

// FieldContains returns a selector predicate that checks if the field contains substr.
func FieldContains(name, substr string) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), substr)) }
}

// FieldNotContains returns a selector predicate that checks if the field does not contain substr.
func FieldNotContains(name, substr string) func(*Selector) {
	return func(s *Selector) { s.Where(NotLike(s.C(name), "%"+substr+"%")) }
}

// FieldHasPrefix returns a selector predicate that checks the field prefix.
func FieldHasPrefix(name, prefix string) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), prefix)) }
}

// FieldIn returns a selector predicate that checks if the field value is in vs.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	args := make([]any, len(vs))
	for i := range vs {
		args[i] = vs[i]
	}
	return func(s *Selector) { s.Where(In(s.C(name), args...)) }
}

// FieldNotIn returns a selector predicate that checks if the field value is not in vs.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	args := make([]any, len(vs))
	for i := range vs {
		args[i] = vs[i]
	}
	return func(s *Selector) { s.Where(NotIn(s.C(name), args...)) }
}

// FieldIsNull returns a selector predicate that checks if the field is NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull returns a selector predicate that checks if the field is not NULL.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}

// collect applies the selector predicates to a scratch selector over the
// same table and returns what they added.
func collect[P ~func(*Selector)](s *Selector, preds []P) []*Predicate {
	ps := make([]*Predicate, 0, len(preds))
	for _, fn := range preds {
		c := Select().From(s.Table())
		fn(c)
		if p := c.P(); p != nil {
			ps = append(ps, p)
		}
	}
	return ps
}

// AndPredicates returns a new predicate for joining multiple selector
// predicates with AND between them.
func AndPredicates[P ~func(*Selector)](preds ...P) func(*Selector) {
	return func(s *Selector) {
		if ps := collect(s, preds); len(ps) > 0 {
			s.Where(And(ps...))
		}
	}
}

// OrPredicates returns a new predicate for joining multiple selector
// predicates with OR between them.
func OrPredicates[P ~func(*Selector)](preds ...P) func(*Selector) {
	return func(s *Selector) {
		if ps := collect(s, preds); len(ps) > 0 {
			s.Where(Or(ps...))
		}
	}
}

// NotPredicates wraps the generated predicates with NOT.
func NotPredicates[P ~func(*Selector)](preds ...P) func(*Selector) {
	return func(s *Selector) {
		if ps := collect(s, preds); len(ps) > 0 {
			s.Where(Not(And(ps...)))
		}
	}
}

// PredicateFunc is a constraint type for predicate functions.
// It allows generic field types to work with any predicate type that is
// based on func(*Selector).
type PredicateFunc interface {
	~func(*Selector)
}

// StringField is a generic string field that provides type-safe predicate methods.
//
//	var Slug = sql.StringField[func(*sql.Selector)]("slug")
//	query.Where(Slug.EQ("hello-world"))
type StringField[P PredicateFunc] string

// Name returns the field name.
func (f StringField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f StringField[P]) EQ(v string) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f StringField[P]) NEQ(v string) P { return P(FieldNEQ(string(f), v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f StringField[P]) In(vs ...string) P { return P(FieldIn(string(f), vs...)) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f StringField[P]) NotIn(vs ...string) P { return P(FieldNotIn(string(f), vs...)) }

// Contains returns a predicate that checks if the field contains the given substring.
func (f StringField[P]) Contains(v string) P { return P(FieldContains(string(f), v)) }

// NotContains returns a predicate that checks if the field does not contain the given substring.
func (f StringField[P]) NotContains(v string) P { return P(FieldNotContains(string(f), v)) }

// HasPrefix returns a predicate that checks if the field has the given prefix.
func (f StringField[P]) HasPrefix(v string) P { return P(FieldHasPrefix(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f StringField[P]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f StringField[P]) NotNull() P { return P(FieldNotNull(string(f))) }

// Int64Field is a generic int64 field that provides type-safe predicate methods.
type Int64Field[P PredicateFunc] string

// Name returns the field name.
func (f Int64Field[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f Int64Field[P]) EQ(v int64) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f Int64Field[P]) NEQ(v int64) P { return P(FieldNEQ(string(f), v)) }

// In returns a predicate that checks if the field value is in the given list.
func (f Int64Field[P]) In(vs ...int64) P { return P(FieldIn(string(f), vs...)) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f Int64Field[P]) NotIn(vs ...int64) P { return P(FieldNotIn(string(f), vs...)) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f Int64Field[P]) GT(v int64) P { return P(FieldGT(string(f), v)) }

// LT returns a predicate that checks if the field is less than the given value.
func (f Int64Field[P]) LT(v int64) P { return P(FieldLT(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f Int64Field[P]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f Int64Field[P]) NotNull() P { return P(FieldNotNull(string(f))) }

// BoolField is a generic bool field that provides type-safe predicate methods.
type BoolField[P PredicateFunc] string

// Name returns the field name.
func (f BoolField[P]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f BoolField[P]) EQ(v bool) P { return P(FieldEQ(string(f), v)) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f BoolField[P]) NEQ(v bool) P { return P(FieldNEQ(string(f), v)) }

// IsNull returns a predicate that checks if the field is NULL.
func (f BoolField[P]) IsNull() P { return P(FieldIsNull(string(f))) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f BoolField[P]) NotNull() P { return P(FieldNotNull(string(f))) }
