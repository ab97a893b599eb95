package mixin

import (
	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/field"
	"github.com/modelkit/modelkit/schema/mixin"
)

// Language tags rows with a free-form language code stored in the
// has_language.language_field column, lang by default.
type Language struct {
	mixin.Schema
	conf  config.Resolver
	field string
}

// NewLanguage returns a Language mixin reading its column name from r.
func NewLanguage(r config.Resolver) Language {
	r = resolver(r)
	return Language{
		conf:  r,
		field: r.Get(config.KeyLanguageField, config.DefaultLanguageField),
	}
}

// Fields of the mixin.
func (l Language) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.String(l.field).
			Optional().
			Comment("Language code of the row"),
	}
}

// Field returns the column name resolved when the mixin was built.
func (l Language) Field() string { return l.field }

func (l Language) column() sql.StringField[Predicate] {
	return sql.StringField[Predicate](resolver(l.conf).Get(config.KeyLanguageField, config.DefaultLanguageField))
}

// Lang filters rows in the given language.
func (l Language) Lang(lang string) Predicate { return l.column().EQ(lang) }

// LangNot filters rows not in the given language.
func (l Language) LangNot(lang string) Predicate { return l.column().NEQ(lang) }

// LangIn filters rows in any of the given languages. An empty list
// matches nothing.
func (l Language) LangIn(langs ...string) Predicate { return l.column().In(langs...) }

// LangNotIn filters rows in none of the given languages. An empty list
// matches everything.
func (l Language) LangNotIn(langs ...string) Predicate { return l.column().NotIn(langs...) }

var _ modelkit.Mixin = (*Language)(nil)
