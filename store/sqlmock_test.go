package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/contrib/mixin"
	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/store"
)

const selectPost = `SELECT "posts"."id", "posts"."slug", "posts"."title", "posts"."is_active", "posts"."lang", "posts"."body" FROM "posts" WHERE "posts"."id" = $1 LIMIT 2`

var postColumns = []string{"id", "slug", "title", "is_active", "lang", "body"}

func mockPosts(t *testing.T, d string) (*store.Table, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	client := store.NewClient(sql.OpenDB(d, db), store.WithConfig(config.Map{}))
	return client.MustRegister(Post{}), mock
}

func TestPostgresStatements(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "posts" ("slug", "title") VALUES ($1, $2) RETURNING "id"`).
			WithArgs("hello-world", "Hello World").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(selectPost).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(postColumns).AddRow(7, "hello-world", "Hello World", true, nil, nil))

		row, err := posts.Create().Set("title", "Hello World").Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), row.ID())
		assert.Equal(t, "hello-world", row.String("slug"))
		assert.True(t, row.Bool("is_active"))
	})

	t.Run("UpdateOne", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		mock.ExpectExec(`UPDATE "posts" SET "title" = $1, "slug" = $2 WHERE "id" = $3`).
			WithArgs("Second Title", "second-title", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectPost).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(postColumns).AddRow(3, "second-title", "Second Title", false, "en", "text"))

		row, err := posts.UpdateOneID(3).Set("title", "Second Title").Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second-title", row.String("slug"))
		assert.False(t, row.Bool("is_active"))
	})

	t.Run("ClearedSlugLoadsTitle", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		mock.ExpectQuery(selectPost).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(postColumns).AddRow(3, "old", "Stored Title", true, nil, nil))
		mock.ExpectExec(`UPDATE "posts" SET "slug" = $1 WHERE "id" = $2`).
			WithArgs("stored-title", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(selectPost).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(postColumns).AddRow(3, "stored-title", "Stored Title", true, nil, nil))

		row, err := posts.UpdateOneID(3).Set("slug", nil).Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, "stored-title", row.String("slug"))
	})

	t.Run("BulkUpdate", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		lang := mixin.NewLanguage(config.Map{})
		mock.ExpectExec(`UPDATE "posts" SET "lang" = NULL, "is_active" = $1 WHERE "posts"."lang" IN ($2, $3)`).
			WithArgs(false, "xx", "yy").
			WillReturnResult(sqlmock.NewResult(0, 4))

		n, err := posts.Update(lang.LangIn("xx", "yy")).Set("is_active", false).Set("lang", nil).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("Delete", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		active := mixin.NewActiveStatus(config.Map{})
		mock.ExpectExec(`DELETE FROM "posts" WHERE "posts"."is_active" = $1`).
			WithArgs(false).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := posts.Delete(active.Inactive()).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Count", func(t *testing.T) {
		posts, mock := mockPosts(t, dialect.Postgres)
		sluggable := mixin.NewSluggableTitle()
		mock.ExpectQuery(`SELECT COUNT(*) FROM "posts" WHERE "posts"."slug" LIKE $1`).
			WithArgs("%news%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		n, err := posts.Query().Where(sluggable.SlugLike("news")).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})
}

func TestMySQLStatements(t *testing.T) {
	ctx := context.Background()
	posts, mock := mockPosts(t, dialect.MySQL)
	mock.ExpectExec("INSERT INTO `posts` (`slug`, `title`, `lang`) VALUES (?, ?, ?)").
		WithArgs("bonjour", "Bonjour", "fr").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT `posts`.`id`, `posts`.`slug`, `posts`.`title`, `posts`.`is_active`, `posts`.`lang`, `posts`.`body` FROM `posts` WHERE `posts`.`id` = ? LIMIT 2").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(postColumns).AddRow(11, []byte("bonjour"), []byte("Bonjour"), int64(1), []byte("fr"), nil))

	row, err := posts.Create().Set("title", "Bonjour").Set("lang", "fr").Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), row.ID())
	assert.Equal(t, "bonjour", row.String("slug"))
	assert.Equal(t, "fr", row.String("lang"))
	assert.True(t, row.Bool("is_active"))
}

func TestDriverErrors(t *testing.T) {
	ctx := context.Background()
	posts, mock := mockPosts(t, dialect.Postgres)
	mock.ExpectQuery(`SELECT "posts"."id", "posts"."slug", "posts"."title", "posts"."is_active", "posts"."lang", "posts"."body" FROM "posts"`).
		WillReturnError(assert.AnError)

	_, err := posts.Query().All(ctx)
	require.Error(t, err)
	assert.True(t, modelkit.IsQueryError(err))
	assert.ErrorIs(t, err, assert.AnError)
}
