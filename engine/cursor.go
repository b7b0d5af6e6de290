package engine

import (
	"context"
	"errors"
	"iter"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/schema"
)

// Cursor is a lazy, forward-only sequence of entities read from a query.
// Each row is mapped when it is fetched; nothing is buffered. A Cursor
// cannot be restarted and must be closed, which All does on its own.
type Cursor[E any] struct {
	rows   *sql.Rows
	info   *schema.TypeInfo
	cols   []*schema.ColumnInfo // per result column, nil when unmapped
	cancel context.CancelFunc
	cur    *E
	err    error
	closed bool
}

func newCursor[E any](rows *sql.Rows, info *schema.TypeInfo, cancel context.CancelFunc) (*Cursor[E], error) {
	c := &Cursor[E]{rows: rows, info: info, cancel: cancel}
	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	c.cols = make([]*schema.ColumnInfo, len(names))
	for i, n := range names {
		c.cols[i], _ = info.Column(n)
	}
	return c, nil
}

// Next advances to the next entity. It returns false at the end of the
// result or on error; the cursor is closed in both cases.
func (c *Cursor[E]) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		c.err = errors.Join(c.err, c.Close())
		return false
	}
	e, err := c.scan()
	if err != nil {
		c.err = errors.Join(err, c.Close())
		return false
	}
	c.cur = e
	return true
}

// scan maps the current row. Columns whose value is NULL are skipped and
// keep the zero value of their field.
func (c *Cursor[E]) scan() (*E, error) {
	dest := make([]any, len(c.cols))
	ptrs := make([]any, len(dest))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	e := new(E)
	for i, col := range c.cols {
		if col == nil || dest[i] == nil {
			continue
		}
		if err := col.Set(e, dest[i]); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Entity returns the entity read by the last call to Next.
func (c *Cursor[E]) Entity() *E { return c.cur }

// Err returns the error that stopped the iteration, if any.
func (c *Cursor[E]) Err() error { return c.err }

// Close releases the underlying rows. It is safe to call more than once.
func (c *Cursor[E]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rows.Close()
	if c.cancel != nil {
		c.cancel()
	}
	return err
}

// All returns an iterator over the remaining entities. Breaking out of the
// loop closes the cursor.
//
//	for u, err := range cur.All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(u.Name)
//	}
func (c *Cursor[E]) All() iter.Seq2[*E, error] {
	return func(yield func(*E, error) bool) {
		defer c.Close()
		for c.Next() {
			if !yield(c.cur, nil) {
				return
			}
		}
		if c.err != nil {
			yield(nil, c.err)
		}
	}
}

// Collect reads the remaining entities into a slice.
func (c *Cursor[E]) Collect() ([]*E, error) {
	var out []*E
	for e, err := range c.All() {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}
