// Package basket collects priced items under a spending limit and notifies a
// listener after every accepted item.
package basket

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Item is a named, priced purchase.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OnChange receives a snapshot of the accepted items and their total.
// Returned errors are recorded in the summary and do not stop collection.
type OnChange func(ctx context.Context, items []Item, total float64) error

// Summary is the final state reported by End.
type Summary struct {
	Items  []Item   `json:"items"`
	Total  float64  `json:"total"`
	Errors []string `json:"errors"`
}

// LimitError reports an item that would push the total past the limit.
type LimitError struct {
	Item Item
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Limit exceeded by %q (%s)", e.Item.Name, formatPrice(e.Item.Price))
}

// Basket is safe for concurrent use.
type Basket struct {
	limit    float64
	onChange OnChange
	ctx      context.Context

	mu     sync.Mutex
	items  []Item
	total  float64
	errors []error

	g errgroup.Group
}

// New returns an empty basket. A nil onChange disables notifications.
func New(limit float64, onChange OnChange) *Basket {
	return NewContext(context.Background(), limit, onChange)
}

// NewContext is New with a context handed to every notification.
func NewContext(ctx context.Context, limit float64, onChange OnChange) *Basket {
	return &Basket{limit: limit, onChange: onChange, ctx: ctx}
}

// Add accepts item when the new total stays within the limit and schedules a
// notification. Rejected items are recorded as *LimitError.
func (b *Basket) Add(item Item) bool {
	b.mu.Lock()
	next := b.total + item.Price
	if next > b.limit {
		b.errors = append(b.errors, &LimitError{Item: item})
		b.mu.Unlock()
		return false
	}
	b.items = append(b.items, item)
	b.total = next
	snapshot := slices.Clone(b.items)
	b.mu.Unlock()

	if b.onChange != nil {
		b.g.Go(func() error {
			if err := b.onChange(b.ctx, snapshot, next); err != nil {
				b.mu.Lock()
				b.errors = append(b.errors, err)
				b.mu.Unlock()
			}
			return nil
		})
	}
	return true
}

// End waits for outstanding notifications and reports the basket contents.
// If ctx ends first, End returns ctx.Err() and notifications keep running.
func (b *Basket) End(ctx context.Context) (Summary, error) {
	done := make(chan struct{})
	go func() {
		_ = b.g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s := Summary{
		Items:  slices.Clone(b.items),
		Total:  b.total,
		Errors: make([]string, 0, len(b.errors)),
	}
	for _, err := range b.errors {
		s.Errors = append(s.Errors, err.Error())
	}
	return s, nil
}

// Items streams items one at a time until they run out or ctx ends.
func Items(ctx context.Context, items []Item) <-chan Item {
	ch := make(chan Item)
	go func() {
		defer close(ch)
		for _, it := range items {
			select {
			case ch <- it:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func formatPrice(p float64) string {
	return fmt.Sprint(p)
}
