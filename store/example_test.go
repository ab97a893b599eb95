package store_test

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/contrib/mixin"
	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/store"
)

func ExampleClient_Migrate() {
	drv, err := sql.Open(dialect.SQLite, "file:example?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		log.Fatalf("failed opening connection to sqlite: %v", err)
	}
	drv.DB().SetMaxOpenConns(1)
	defer drv.Close()

	ctx := context.Background()
	client := store.NewClient(drv,
		store.WithConfig(config.Map{}),
		store.Log(slog.New(slog.DiscardHandler)),
	)
	posts := client.MustRegister(Post{})
	if err := client.Migrate(ctx); err != nil {
		log.Fatalf("failed creating schema resources: %v", err)
	}

	row, err := posts.Create().
		Set("title", "My Blog Post").
		Set("is_active", true).
		Save(ctx)
	if err != nil {
		log.Fatalf("failed creating post: %v", err)
	}
	fmt.Println(row.String("slug"))

	active := mixin.NewActiveStatus(config.Map{})
	n, err := posts.Query().Where(active.Active()).Count(ctx)
	if err != nil {
		log.Fatalf("failed counting posts: %v", err)
	}
	fmt.Println(n)
	// Output:
	// my-blog-post
	// 1
}
