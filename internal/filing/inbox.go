package filing

import (
	"context"
	"sync"
)

// Inbox is an unbounded FIFO of pending items.
type Inbox struct {
	mu    sync.Mutex
	items []Item
	ready chan struct{}
}

func NewInbox() *Inbox {
	return &Inbox{ready: make(chan struct{}, 1)}
}

// Enqueue appends an item. It never blocks.
func (q *Inbox) Enqueue(item Item) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Next blocks until an item is available or ctx is done.
func (q *Inbox) Next(ctx context.Context) (Item, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = Item{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Item{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len reports the number of queued items.
func (q *Inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
