package sql

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/modelkit/dialect"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		input     Querier
		wantQuery string
		wantArgs  []any
	}{
		{
			input:     Select().From(Table("posts")),
			wantQuery: `SELECT * FROM "posts"`,
		},
		{
			input:     Dialect(dialect.MySQL).Select("id", "slug").From(Table("posts")),
			wantQuery: "SELECT `id`, `slug` FROM `posts`",
		},
		{
			input: Select("id").
				From(Table("posts")).
				Where(EQ("slug", "hello-world")).
				Where(EQ("lang", "en")),
			wantQuery: `SELECT "id" FROM "posts" WHERE "slug" = ? AND "lang" = ?`,
			wantArgs:  []any{"hello-world", "en"},
		},
		{
			input: Dialect(dialect.Postgres).
				Select("id").
				From(Table("posts")).
				Where(Or(EQ("lang", "en"), EQ("lang", "tr"))).
				Where(NEQ("is_active", false)),
			wantQuery: `SELECT "id" FROM "posts" WHERE ("lang" = $1 OR "lang" = $2) AND "is_active" <> $3`,
			wantArgs:  []any{"en", "tr", false},
		},
		{
			input: Dialect(dialect.SQLite).
				Select().
				From(Table("categories")).
				Where(In("parent_id", 1, 2, 3)).
				OrderBy("id", Desc("name")).
				Limit(10).
				Offset(5),
			wantQuery: `SELECT * FROM "categories" WHERE "parent_id" IN (?, ?, ?) ORDER BY "id", "name" DESC LIMIT 10 OFFSET 5`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			input:     Dialect(dialect.SQLite).Select().From(Table("posts")).Offset(5),
			wantQuery: `SELECT * FROM "posts" LIMIT -1 OFFSET 5`,
		},
		{
			input:     Dialect(dialect.MySQL).Select().From(Table("posts")).Offset(5),
			wantQuery: "SELECT * FROM `posts` LIMIT 18446744073709551615 OFFSET 5",
		},
		{
			input:     Dialect(dialect.Postgres).Select().From(Table("posts")).Offset(5),
			wantQuery: `SELECT * FROM "posts" OFFSET 5`,
		},
		{
			input: Select("id").
				From(Table("posts")).
				Where(IsNull("parent_id")).
				OrderBy(Asc("id")).
				Count(),
			wantQuery: `SELECT COUNT(*) FROM "posts" WHERE "parent_id" IS NULL`,
		},
		{
			input:     Select("posts.id", "posts.*").From(Table("posts")),
			wantQuery: `SELECT "posts"."id", "posts".* FROM "posts"`,
		},
		{
			input: Dialect(dialect.Postgres).
				Insert("posts").
				Columns("title", "slug").
				Values("Hello World", "hello-world").
				Returning("id"),
			wantQuery: `INSERT INTO "posts" ("title", "slug") VALUES ($1, $2) RETURNING "id"`,
			wantArgs:  []any{"Hello World", "hello-world"},
		},
		{
			input: Dialect(dialect.SQLite).
				Insert("posts").
				Columns("title").
				Values("a").
				Values("b").
				Returning("id"),
			wantQuery: `INSERT INTO "posts" ("title") VALUES (?), (?)`,
			wantArgs:  []any{"a", "b"},
		},
		{
			input:     Dialect(dialect.SQLite).Insert("posts"),
			wantQuery: `INSERT INTO "posts" DEFAULT VALUES`,
		},
		{
			input:     Dialect(dialect.MySQL).Insert("posts"),
			wantQuery: "INSERT INTO `posts` VALUES ()",
		},
		{
			input: Dialect(dialect.Postgres).
				Update("posts").
				Set("title", "Hello").
				Set("slug", "hello").
				SetNull("parent_id").
				Where(EQ("id", 1)),
			wantQuery: `UPDATE "posts" SET "parent_id" = NULL, "title" = $1, "slug" = $2 WHERE "id" = $3`,
			wantArgs:  []any{"Hello", "hello", 1},
		},
		{
			input: Dialect(dialect.MySQL).
				Update("posts").
				Set("is_active", false).
				Where(In("id", 1, 2)).
				Where(NotNull("slug")),
			wantQuery: "UPDATE `posts` SET `is_active` = ? WHERE `id` IN (?, ?) AND `slug` IS NOT NULL",
			wantArgs:  []any{false, 1, 2},
		},
		{
			input:     Delete("posts").Where(Not(Like("slug", "%draft%"))),
			wantQuery: `DELETE FROM "posts" WHERE NOT ("slug" LIKE ?)`,
			wantArgs:  []any{"%draft%"},
		},
		{
			input:     Dialect(dialect.Postgres).Delete("posts"),
			wantQuery: `DELETE FROM "posts"`,
		},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuilderErrors(t *testing.T) {
	s := Select("id")
	s.Query()
	assert.EqualError(t, s.Err(), "sql: missing FROM clause")

	u := Update("posts")
	u.Query()
	assert.EqualError(t, u.Err(), "sql: update posts without changes")
	assert.True(t, u.Empty())

	i := Insert("posts").Columns("title", "slug").Values("only-one")
	i.Query()
	assert.EqualError(t, i.Err(), "sql: insert row 0 has 1 values for 2 columns")
}

func TestQuote(t *testing.T) {
	b := &Builder{}
	assert.Equal(t, `"posts"`, b.Quote("posts"))
	assert.Equal(t, `"a""b"`, b.Quote(`a"b`))
	b.SetDialect(dialect.MySQL)
	assert.Equal(t, "`posts`", b.Quote("posts"))
	assert.Equal(t, dialect.MySQL, b.Dialect())
}

func TestBuilderWrite(t *testing.T) {
	b := &Builder{}
	b.WriteString("lang").Pad().WriteChar('=').Pad().Arg("en")
	b.Comma().Wrap(func(b *Builder) { b.Args(1, 2) })
	query, args := b.Query()
	assert.Equal(t, "lang = ?, (?, ?)", query)
	assert.Equal(t, []any{"en", 1, 2}, args)

	b = &Builder{}
	b.SetDialect(dialect.Postgres)
	b.Wrap(func(b *Builder) { b.Args("a", "b") })
	query, _ = b.Query()
	assert.Equal(t, "($1, $2)", query)
}

func TestSelectorClone(t *testing.T) {
	s := Select("id").From(Table("posts")).Where(EQ("lang", "en"))
	c := s.Clone().Where(EQ("slug", "x")).OrderBy("id")

	query, _ := s.Query()
	assert.Equal(t, `SELECT "id" FROM "posts" WHERE "lang" = ?`, query)
	query, args := c.Query()
	assert.Equal(t, `SELECT "id" FROM "posts" WHERE "lang" = ? AND "slug" = ? ORDER BY "id"`, query)
	assert.Equal(t, []any{"en", "x"}, args)
}

func TestSelectorC(t *testing.T) {
	s := Select().From(Table("posts"))
	assert.Equal(t, "posts.slug", s.C("slug"))
	assert.Equal(t, "other.slug", s.C("other.slug"))
	assert.Equal(t, "slug", Select().C("slug"))
	require.Equal(t, "posts", s.Table().Name())
}
