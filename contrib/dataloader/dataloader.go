// Package dataloader provides generic helpers for batch loading rows by key.
//
// The store uses it to load eager edges: the keys of one level are
// collected, deduplicated and split into chunks, each chunk is fetched with
// a single IN query, and the results are grouped back onto the rows that
// asked for them.
//
//	load := func(ctx context.Context, ids []int64) ([]*store.Row, error) {
//	    return posts.Query().Where(sql.FieldIn("id", ids...)).All(ctx)
//	}
//	rows, err := dataloader.Load(ctx, dataloader.Unique(ids), 500, load)
//
//	byParent := dataloader.GroupByKey(rows, func(r *store.Row) int64 {
//	    id, _ := r.Int64("parent_id")
//	    return id
//	})
//	children := dataloader.OrderGroupsByKeys(ids, byParent)
package dataloader

import (
	"context"
)

// KeyFunc extracts a key from a value.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads the values of a batch of keys. Values may come back in any
// order, and missing keys are not an error.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Unique returns keys without duplicates, in first-seen order.
func Unique[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Chunk splits keys into batches of at most size keys. A non-positive size
// returns a single batch.
func Chunk[K any](keys []K, size int) [][]K {
	if len(keys) == 0 {
		return nil
	}
	if size <= 0 || len(keys) <= size {
		return [][]K{keys}
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for len(keys) > size {
		chunks = append(chunks, keys[:size:size])
		keys = keys[size:]
	}
	return append(chunks, keys)
}

// Load calls fn once per chunk of keys and concatenates the results in
// chunk order. It stops at the first error.
func Load[K comparable, V any](ctx context.Context, keys []K, size int, fn BatchFunc[K, V]) ([]V, error) {
	var out []V
	for _, chunk := range Chunk(keys, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vs, err := fn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// GroupByKey groups values by key, keeping their relative order.
func GroupByKey[K comparable, V any](values []V, key KeyFunc[K, V]) map[K][]V {
	groups := make(map[K][]V)
	for _, v := range values {
		k := key(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}

// OrderGroupsByKeys returns the group of every key, in key order. Keys
// may repeat, and keys without a group get a nil slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	out := make([][]V, len(keys))
	for i, k := range keys {
		out[i] = groups[k]
	}
	return out
}
