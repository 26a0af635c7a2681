// Package dedupe tracks stat commits that have already been applied so a
// retried battle never counts the same result twice.
package dedupe

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/okian/mealmax/internal/domain/model"
)

const defaultMaxSize = 50000

// Deduper records commit keys to ensure at-most-once stat updates.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed commit can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the commit key for one side of a battle.
func Key(battleID string, mealID int64, result model.Result) string {
	return fmt.Sprintf("%s/%d/%s", battleID, mealID, result)
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest once
// maxSize is reached. A maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
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

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}

	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

// Size returns the current number of recorded keys.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
