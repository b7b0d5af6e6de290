// Package dataloader batches entity lookups by key through an engine.
//
// A Loader turns many single-key lookups into one SELECT ... WHERE col IN
// (...) and hands the results back in key order, which is what batch
// functions of DataLoader implementations must return:
//
//	users := dataloader.NewLoader(eng, "id", func(u *User) int64 { return u.ID })
//	list, errs := users.LoadMany(ctx, []int64{3, 1, 2})
//
// One-to-many lookups by a non-unique column use LoadGroups:
//
//	posts := dataloader.NewLoader(eng, "user_id", func(p *Post) int64 { return p.UserID })
//	byUser, err := posts.LoadGroups(ctx, userIDs)
package dataloader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/engine"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// Loader loads entities of type E by the values of one column. Concurrent
// loads of the same key set share one query. The shared query outlives a
// canceled caller; WithCommandTimeout on the engine bounds it.
type Loader[K comparable, E any] struct {
	eng    *engine.Engine
	column string
	key    KeyFunc[K, *E]
	group  singleflight.Group
}

// NewLoader returns a loader selecting entities of type E by column. The
// key function must return the column's value of an entity.
func NewLoader[K comparable, E any](eng *engine.Engine, column string, key KeyFunc[K, *E]) *Loader[K, E] {
	return &Loader[K, E]{eng: eng, column: column, key: key}
}

// Load returns the entity with the given key, ErrNotFound if none.
func (l *Loader[K, E]) Load(ctx context.Context, key K) (*E, error) {
	vs, errs := l.LoadMany(ctx, []K{key})
	return vs[0], errs[0]
}

// LoadMany returns the entities of the keys in key order. Missing keys
// yield a nil entity and ErrNotFound; a failed query yields its error for
// every key.
func (l *Loader[K, E]) LoadMany(ctx context.Context, keys []K) ([]*E, []error) {
	vs, err := l.fetch(ctx, keys)
	if err != nil {
		errs := make([]error, len(keys))
		for i := range errs {
			errs[i] = err
		}
		return make([]*E, len(keys)), errs
	}
	return OrderByKeys(keys, vs, l.key)
}

// LoadGroups returns, for every key, the entities whose column holds it.
func (l *Loader[K, E]) LoadGroups(ctx context.Context, keys []K) ([][]*E, error) {
	vs, err := l.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}
	return OrderGroupsByKeys(keys, GroupByKey(vs, l.key)), nil
}

// fetch runs the query of keys. Concurrent fetches of the same key set
// share one query, which is detached from the cancellation of the caller
// that started it; each caller stops waiting when its own ctx is done.
func (l *Loader[K, E]) fetch(ctx context.Context, keys []K) ([]*E, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(groupKey(l.column, keys), func() (any, error) {
		cur, err := engine.Select[E](shared, l.eng, sql.FieldIn(l.column, keys...))
		if err != nil {
			return nil, err
		}
		return cur.Collect()
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("dataloader: load by %s: %w", l.column, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, fmt.Errorf("dataloader: load by %s: %w", l.column, r.Err)
		}
		return r.Val.([]*E), nil
	}
}

// groupKey identifies a key set. Keys are written in Go syntax, so string
// keys are quoted and two different sets never share a representation.
func groupKey[K comparable](column string, keys []K) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q/%d", column, len(keys))
	for _, k := range keys {
		fmt.Fprintf(&b, "\x00%#v", k)
	}
	return b.String()
}

// OrderByKeys reorders values to match the order of keys. Missing values
// are represented as zero values with ErrNotFound.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups values by a key function.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped values to match the order of keys.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
