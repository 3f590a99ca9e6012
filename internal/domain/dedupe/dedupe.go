// Package dedupe tracks client request ids so a retried append is recorded
// at most once.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// defaultMaxSize bounds the number of remembered request ids.
const defaultMaxSize = 50_000

// Deduper records seen request ids.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id. Used when the command it guarded was rejected,
	// so the client may retry with the same id.
	Unrecord(ctx context.Context, id string)

	// Forget drops every id with the given prefix (e.g. a deleted match).
	Forget(ctx context.Context, prefix string)

	Size() int64
}

// inMemoryDeduper is a bounded set with oldest-first eviction. A maxSize of
// zero or less means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

func (d *inMemoryDeduper) Forget(_ context.Context, prefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for el := d.order.Front(); el != nil; {
		next := el.Next()
		if id := el.Value.(string); strings.HasPrefix(id, prefix) {
			d.order.Remove(el)
			delete(d.seen, id)
		}
		el = next
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
