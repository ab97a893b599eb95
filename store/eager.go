package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/modelkit/modelkit/contrib/dataloader"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/edge"
)

// loadEdges loads the named edges of t on rows. Sibling edges load
// concurrently; each edge runs one IN query per batch of keys and then
// loads its own eager edges on the rows it returned.
func (c *Client) loadEdges(ctx context.Context, t *Table, rows []*Row, names []string) error {
	if len(rows) == 0 || len(names) == 0 {
		return nil
	}
	edges := make([]*edge.Descriptor, len(names))
	for i, name := range names {
		e, ok := t.edges[name]
		if !ok {
			return fmt.Errorf("store: %s has no edge %q", t.typ, name)
		}
		edges[i] = e
	}
	results := make([][][]*Row, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range edges {
		name := e.Name
		g.Go(func() error {
			loaded, err := c.loadEdge(ctx, t, rows, e)
			if err != nil {
				return fmt.Errorf("store: loading edge %q of %s: %w", name, t.typ, err)
			}
			results[i] = loaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, name := range names {
		for j, r := range rows {
			r.setEdge(name, results[i][j])
		}
	}
	return nil
}

// loadEdge returns the rows of edge e for every row, in row order.
func (c *Client) loadEdge(ctx context.Context, t *Table, rows []*Row, e *edge.Descriptor) ([][]*Row, error) {
	target, err := t.target(e)
	if err != nil {
		return nil, err
	}
	out := make([][]*Row, len(rows))
	var loaded []*Row
	if e.Inverse() {
		keys := make([]int64, 0, len(rows))
		for _, r := range rows {
			if fk, ok := r.fk(e.Field); ok {
				keys = append(keys, fk)
			}
		}
		loaded, err = c.loadBatch(ctx, target, IDColumn, dataloader.Unique(keys))
		if err != nil {
			return nil, err
		}
		byID := dataloader.GroupByKey(loaded, (*Row).ID)
		for i, r := range rows {
			if fk, ok := r.fk(e.Field); ok {
				out[i] = byID[fk]
			}
		}
	} else {
		ids := make([]int64, len(rows))
		for i, r := range rows {
			ids[i] = r.ID()
		}
		loaded, err = c.loadBatch(ctx, target, e.Field, dataloader.Unique(ids))
		if err != nil {
			return nil, err
		}
		byFK := dataloader.GroupByKey(loaded, func(r *Row) int64 {
			fk, _ := r.fk(e.Field)
			return fk
		})
		out = dataloader.OrderGroupsByKeys(ids, byFK)
	}
	if err := c.loadEdges(ctx, target, loaded, e.Eager); err != nil {
		return nil, err
	}
	return out, nil
}

// loadBatch selects the rows of t whose column is one of keys.
func (c *Client) loadBatch(ctx context.Context, t *Table, column string, keys []int64) ([]*Row, error) {
	return dataloader.Load(ctx, keys, c.batch, func(ctx context.Context, keys []int64) ([]*Row, error) {
		return t.Query().Where(sql.FieldIn(column, keys...)).noCache().All(ctx)
	})
}
