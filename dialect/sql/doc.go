// Package sql provides the SQL driver of the store and the statement
// builders it renders queries with.
//
// # Builders
//
//   - Selector: SELECT with predicates, ordering and pagination
//   - InsertBuilder: INSERT with RETURNING on Postgres
//   - UpdateBuilder: UPDATE with SET and WHERE clauses
//   - DeleteBuilder: DELETE with WHERE predicates
//
// Identifiers are quoted with backticks on MySQL and double quotes
// elsewhere. Placeholders are $1, $2... on Postgres and ? elsewhere:
//
//	sql.Dialect(dialect.Postgres).
//	    Select("id", "slug").
//	    From(sql.Table("posts")).
//	    Where(sql.EQ("is_active", true))
//	// SELECT "id", "slug" FROM "posts" WHERE "is_active" = $1
//
// # Predicates
//
//	sql.EQ("slug", "hello")           // "slug" = ?
//	sql.NEQ("lang", "en")             // "lang" <> ?
//	sql.Contains("slug", "hello")     // "slug" LIKE '%hello%'
//	sql.In("lang", "en", "tr")        // "lang" IN (?, ?)
//	sql.IsNull("parent_id")           // "parent_id" IS NULL
//
// An empty In never matches and an empty NotIn always matches.
//
// Selector predicates (func(*Selector)) are what the store and the mixins
// pass around. They qualify the column with the selected table:
//
//	sql.FieldEQ("slug", "hello")
//	sql.StringField[func(*sql.Selector)]("lang").In("en", "tr")
//
// # Drivers
//
// Open registers the Postgres (lib/pq), MySQL (go-sql-driver/mysql) and
// SQLite (modernc.org/sqlite) drivers. StatsDriver and DebugDriver wrap
// any dialect.Driver with statistics and log/slog statement logging.
package sql
