package basket

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

var purchase = []Item{
	{Name: "Laptop", Price: 1500},
	{Name: "Mouse", Price: 25},
	{Name: "Keyboard", Price: 100},
	{Name: "HDMI cable", Price: 10},
	{Name: "Bag", Price: 50},
	{Name: "Mouse pad", Price: 5},
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestBasket_Limit(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		totals []float64
	)
	b := New(1050, func(_ context.Context, _ []Item, total float64) error {
		mu.Lock()
		totals = append(totals, total)
		mu.Unlock()
		return nil
	})

	for _, it := range purchase {
		b.Add(it)
	}
	s, err := b.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	wantNames := []string{"Mouse", "Keyboard", "HDMI cable", "Bag", "Mouse pad"}
	if got := names(s.Items); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("items = %v, want %v", got, wantNames)
	}
	if s.Total != 190 {
		t.Fatalf("total = %v, want 190", s.Total)
	}
	wantErrs := []string{`Limit exceeded by "Laptop" (1500)`}
	if !reflect.DeepEqual(s.Errors, wantErrs) {
		t.Fatalf("errors = %q, want %q", s.Errors, wantErrs)
	}
	if len(totals) != 5 {
		t.Fatalf("notifications = %d, want 5", len(totals))
	}
}

func TestBasket_AddResult(t *testing.T) {
	t.Parallel()

	b := New(100, nil)
	if !b.Add(Item{Name: "a", Price: 100}) {
		t.Fatalf("item equal to the limit was rejected")
	}
	if b.Add(Item{Name: "b", Price: 0.5}) {
		t.Fatalf("item over the limit was accepted")
	}
	s, _ := b.End(context.Background())
	if s.Total != 100 || len(s.Errors) != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Errors[0] != `Limit exceeded by "b" (0.5)` {
		t.Fatalf("error = %q", s.Errors[0])
	}
}

func TestBasket_NotificationErrors(t *testing.T) {
	t.Parallel()

	b := New(1000, func(_ context.Context, items []Item, _ float64) error {
		if len(items) == 2 {
			return errors.New("listener down")
		}
		return nil
	})
	for _, it := range purchase[1:4] {
		b.Add(it)
	}
	s, err := b.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(s.Items) != 3 {
		t.Fatalf("items = %d, want 3 (a failed notification must not stop collection)", len(s.Items))
	}
	if !reflect.DeepEqual(s.Errors, []string{"listener down"}) {
		t.Fatalf("errors = %q", s.Errors)
	}
}

func TestBasket_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		sizes = map[float64]int{}
	)
	b := New(1000, func(_ context.Context, items []Item, total float64) error {
		mu.Lock()
		sizes[total] = len(items)
		mu.Unlock()
		return nil
	})
	b.Add(Item{Name: "x", Price: 1})
	b.Add(Item{Name: "y", Price: 2})
	b.Add(Item{Name: "z", Price: 4})
	if _, err := b.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := map[float64]int{1: 1, 3: 2, 7: 3}
	if !reflect.DeepEqual(sizes, want) {
		t.Fatalf("snapshot sizes = %v, want %v", sizes, want)
	}
}

func TestBasket_EndContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	b := New(10, func(context.Context, []Item, float64) error {
		<-release
		return nil
	})
	b.Add(Item{Name: "slow", Price: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.End(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("End err = %v, want deadline exceeded", err)
	}

	close(release)
	s, err := b.End(context.Background())
	if err != nil || len(s.Items) != 1 {
		t.Fatalf("End after release = %+v, %v", s, err)
	}
}

func TestBasket_SummaryIsCopy(t *testing.T) {
	t.Parallel()

	b := New(10, nil)
	b.Add(Item{Name: "a", Price: 1})
	s, _ := b.End(context.Background())
	s.Items[0].Name = "mutated"

	s2, _ := b.End(context.Background())
	if s2.Items[0].Name != "a" {
		t.Fatalf("summary shares storage with the basket")
	}
}

func TestItems(t *testing.T) {
	t.Parallel()

	var got []Item
	for it := range Items(context.Background(), purchase) {
		got = append(got, it)
	}
	if !reflect.DeepEqual(got, purchase) {
		t.Fatalf("Items = %v, want %v", got, purchase)
	}
}

func TestItems_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ch := Items(ctx, purchase)
	<-ch
	cancel()

	n := 0
	for range ch {
		n++
	}
	if n > len(purchase)-1 {
		t.Fatalf("received %d items after cancel", n)
	}
}
