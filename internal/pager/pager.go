// Package pager fetches cursor-paginated collections page by page.
//
// A collection is identified by its logical key, the key of its first page.
// Each further page repeats the first page's query with a "before" bound set
// to the id of the last item already seen. A page shorter than the query's
// page size ends the collection.
package pager

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/nikbrunner/bmr/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Item is anything that can serve as a pagination cursor.
type Item interface {
	CursorID() int64
}

// Query serializes the filter of a collection.
type Query interface {
	// Values returns the query parameters, omitting empty fields.
	Values() url.Values
	// PageSize is the number of items a full page holds.
	PageSize() int
}

// FetchFunc loads the page stored under key.
type FetchFunc[T Item] func(ctx context.Context, key string) ([]T, error)

// PageKey returns the key of page index. Page 0 always exists; page n exists
// only when prev, the items of page n-1, filled a whole page.
func PageKey[T Item](base string, q Query, index int, prev []T) (string, bool) {
	values := q.Values()
	if index > 0 {
		if len(prev) == 0 || len(prev) < q.PageSize() {
			return "", false
		}
		values.Set("before", strconv.FormatInt(prev[len(prev)-1].CursorID(), 10))
	}

	if encoded := values.Encode(); encoded != "" {
		return base + "?" + encoded, true
	}
	return base, true
}

// Collect walks every page of the collection and returns all items in order.
func Collect[T Item](ctx context.Context, base string, q Query, fetch FetchFunc[T]) ([]T, error) {
	var all, prev []T
	for index := 0; ; index++ {
		key, ok := PageKey(base, q, index, prev)
		if !ok {
			return all, nil
		}
		page, err := fetch(ctx, key)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
		prev = page
	}
}

// Snapshot is a consistent view of the current collection.
type Snapshot[T Item] struct {
	Key         string
	Pages       [][]T
	Loading     bool
	Err         error
	Empty       bool
	ReachingEnd bool
}

// Items flattens the loaded pages.
func (s Snapshot[T]) Items() []T {
	var items []T
	for _, page := range s.Pages {
		items = append(items, page...)
	}
	return items
}

type entry[T Item] struct {
	query Query
	// keys[i] is the key requested for slot i; pages holds the loaded prefix.
	keys     []string
	pages    [][]T
	inflight int
	err      error
}

// Collection is an infinite list over one endpoint. State is cached per
// logical key so switching back to an earlier query shows its pages at once.
type Collection[T Item] struct {
	base  string
	fetch FetchFunc[T]
	group singleflight.Group

	mu      sync.Mutex
	current string
	entries map[string]*entry[T]
}

// New creates a collection over base. SetQuery must be called before loading.
func New[T Item](base string, fetch FetchFunc[T]) *Collection[T] {
	return &Collection[T]{
		base:    base,
		fetch:   fetch,
		entries: make(map[string]*entry[T]),
	}
}

// SetQuery switches the collection to q. Pages cached for q are kept.
// It reports whether q already had loaded pages.
func (c *Collection[T]) SetQuery(q Query) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key, _ := PageKey[T](c.base, q, 0, nil)
	c.current = key
	e, ok := c.entries[key]
	if !ok {
		c.entries[key] = &entry[T]{query: q}
		return false
	}
	return len(e.pages) > 0
}

// Key returns the current logical key.
func (c *Collection[T]) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Load fetches the first page unless it is already loaded or requested.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	e := c.entries[c.current]
	if e == nil || len(e.keys) > 0 {
		c.mu.Unlock()
		return nil
	}
	key, _ := PageKey[T](c.base, e.query, 0, nil)
	e.keys = append(e.keys, key)
	e.inflight++
	c.mu.Unlock()

	return c.fetchSlot(ctx, e, 0, key)
}

// LoadMore requests the next page. It does nothing while a page is pending
// or once the collection is exhausted.
func (c *Collection[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	e := c.entries[c.current]
	if e == nil || len(e.pages) == 0 || len(e.keys) > len(e.pages) {
		c.mu.Unlock()
		return nil
	}
	index := len(e.pages)
	key, ok := PageKey(c.base, e.query, index, e.pages[index-1])
	if !ok {
		c.mu.Unlock()
		return nil
	}
	e.keys = append(e.keys, key)
	e.inflight++
	c.mu.Unlock()

	return c.fetchSlot(ctx, e, index, key)
}

// Revalidate re-fetches every page key already requested for the current
// query, in order. The first error is returned after all pages were tried.
func (c *Collection[T]) Revalidate(ctx context.Context) error {
	c.mu.Lock()
	e := c.entries[c.current]
	if e == nil {
		c.mu.Unlock()
		return nil
	}
	keys := append([]string(nil), e.keys...)
	e.inflight += len(keys)
	c.mu.Unlock()

	var firstErr error
	for index, key := range keys {
		if err := c.fetchSlot(ctx, e, index, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Refresh loads the current query, revalidating it when pages are cached.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	e := c.entries[c.current]
	cached := e != nil && len(e.keys) > 0
	c.mu.Unlock()

	if cached {
		return c.Revalidate(ctx)
	}
	return c.Load(ctx)
}

// Invalidate drops the cached state of every query except the current one.
// Results still in flight for dropped queries are discarded.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if key != c.current {
			delete(c.entries, key)
		}
	}
}

// Snapshot returns the state of the current query.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot[T]{Key: c.current}
	e := c.entries[c.current]
	if e == nil {
		return snap
	}

	snap.Pages = append([][]T(nil), e.pages...)
	snap.Loading = e.inflight > 0
	snap.Err = e.err
	if len(e.pages) > 0 {
		last := e.pages[len(e.pages)-1]
		snap.Empty = len(e.pages[0]) == 0
		snap.ReachingEnd = len(last) == 0 || len(last) < e.query.PageSize()
	}
	return snap
}

// fetchSlot loads key into slot index of e. The result lands in e even when
// e is no longer the current query.
func (c *Collection[T]) fetchSlot(ctx context.Context, e *entry[T], index int, key string) error {
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, key)
	})
	items, _ := v.([]T)
	metrics.PagesFetchedTotal.WithLabelValues(c.base, metrics.Status(err)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	e.inflight--

	if index >= len(e.keys) || e.keys[index] != key {
		metrics.StalePagesDroppedTotal.WithLabelValues(c.base).Inc()
		log.Debug().Str("key", key).Msg("dropping stale page")
		return err
	}

	if err != nil {
		e.err = err
		if index >= len(e.pages) {
			// Release the slot so the page can be requested again.
			e.keys = e.keys[:len(e.pages)]
		}
		return err
	}

	e.err = nil
	switch {
	case index < len(e.pages):
		e.pages[index] = items
	case index == len(e.pages):
		e.pages = append(e.pages, items)
	}
	return nil
}
