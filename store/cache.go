package store

import (
	"bytes"
	"context"

	"github.com/vmihailenco/msgpack/v5"
)

// cachedRow is the cache encoding of a Row.
type cachedRow struct {
	ID     int64          `msgpack:"id"`
	Values map[string]any `msgpack:"v"`
}

func encodeRows(rows []*Row) ([]byte, error) {
	out := make([]cachedRow, len(rows))
	for i, r := range rows {
		values := make(map[string]any, len(r.values))
		for name, v := range r.values {
			values[name] = v
		}
		out[i] = cachedRow{ID: r.id, Values: values}
	}
	return msgpack.Marshal(out)
}

func (t *Table) decodeRows(b []byte) ([]*Row, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var cached []cachedRow
	if err := dec.Decode(&cached); err != nil {
		return nil, err
	}
	rows := make([]*Row, len(cached))
	for i, c := range cached {
		values := c.Values
		if values == nil {
			values = make(map[string]any)
		}
		values[IDColumn] = c.ID
		r, err := t.newRow(values)
		if err != nil {
			return nil, err
		}
		rows[i] = r
	}
	return rows, nil
}

// cacheGet returns the cached rows of key. Cache failures are logged and
// reported as a miss.
func (t *Table) cacheGet(ctx context.Context, key string) ([]*Row, bool) {
	c := t.client
	b, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "store: cache get failed", "key", key, "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	rows, err := t.decodeRows(b)
	if err != nil {
		c.log.WarnContext(ctx, "store: cache decode failed", "key", key, "error", err)
		return nil, false
	}
	return rows, true
}

func (t *Table) cacheSet(ctx context.Context, key string, rows []*Row) {
	c := t.client
	b, err := encodeRows(rows)
	if err != nil {
		c.log.WarnContext(ctx, "store: cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.log.WarnContext(ctx, "store: cache set failed", "key", key, "error", err)
	}
}
