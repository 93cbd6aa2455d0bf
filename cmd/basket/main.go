// Command basket feeds a fixed purchase list through a budget-limited basket
// and prints the resulting summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"tablepipe/internal/basket"
)

var purchase = []basket.Item{
	{Name: "Laptop", Price: 1500},
	{Name: "Mouse", Price: 25},
	{Name: "Keyboard", Price: 100},
	{Name: "HDMI cable", Price: 10},
	{Name: "Bag", Price: 50},
	{Name: "Mouse pad", Price: 5},
}

func main() {
	limit := flag.Float64("limit", 1050, "spending limit")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	timeout := flag.Duration("timeout", 5*time.Second, "time to wait for notifications")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, err := run(ctx, os.Stdout, *limit, purchase)
	if err != nil {
		log.Fatalf("basket: %v", err)
	}
	if err := report(os.Stdout, s, *asJSON); err != nil {
		log.Fatalf("basket: %v", err)
	}
}

// run collects items and logs each running total as it is accepted.
func run(ctx context.Context, w io.Writer, limit float64, items []basket.Item) (basket.Summary, error) {
	var mu sync.Mutex
	b := basket.NewContext(ctx, limit, func(_ context.Context, _ []basket.Item, total float64) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := fmt.Fprintln(w, total)
		return err
	})
	for it := range basket.Items(ctx, items) {
		b.Add(it)
	}
	return b.End(ctx)
}

func report(w io.Writer, s basket.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	names := make([]string, len(s.Items))
	for i, it := range s.Items {
		names[i] = it.Name
	}
	_, err := fmt.Fprintf(w, "Items: %q\nTotal: %v\nErrors: %q\n", names, s.Total, s.Errors)
	return err
}
