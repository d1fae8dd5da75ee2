// Package catalog fetches the paginated product listing and keeps the
// pages loaded so far. Products are immutable once fetched.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/pkg/ctxmanage"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

// DefaultPageSize matches the page size the storefront has always
// requested from the listing endpoint.
const DefaultPageSize = 5

type Fetcher struct {
	client   *api.Client
	pageSize int

	mu       sync.Mutex
	products []api.Product
	seen     map[int]struct{}
	page     int
	hasMore  bool
	loading  bool
}

func NewFetcher(client *api.Client, pageSize int) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{
		client:   client,
		pageSize: pageSize,
		seen:     make(map[int]struct{}),
		page:     1,
		hasMore:  true,
	}, nil
}

// FetchNextPage loads the next catalog page. It reports false without
// issuing a request when a fetch is already in flight or the end of the
// listing was reached; otherwise it reports whether new products arrived.
//
// The loading flag is the only guard against overlapping fetches racing on
// the product list, so it is cleared on every settle path, including
// failure. A failure leaves hasMore untouched so the caller can retry.
func (f *Fetcher) FetchNextPage(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return false, nil
	}
	f.loading = true
	page := f.page
	f.mu.Unlock()

	ctx = ctxmanage.WithTraceId(ctx)
	traceId := ctxmanage.GetTraceId(ctx)

	products, err := f.client.Products(ctx, f.pageSize, page)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	if err != nil {
		slog.Error("failed to fetch catalog page", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.Page, page), slog.String(logkey.ERROR, err.Error()))
		return false, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	if len(products) == 0 {
		f.hasMore = false
		return false, nil
	}

	added := 0
	for _, p := range products {
		if _, ok := f.seen[p.ID]; ok {
			continue
		}
		f.seen[p.ID] = struct{}{}
		f.products = append(f.products, p)
		added++
	}
	f.page++

	slog.Info("catalog page loaded", slog.String(logkey.TraceID, traceId),
		slog.Int(logkey.Page, page), slog.Int("Added", added))
	return added > 0, nil
}

// Search filters the already-fetched products by a case-insensitive
// substring match on the name. It never touches the network and never
// resets pagination.
func (f *Fetcher) Search(term string) []api.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	if term == "" {
		out := make([]api.Product, len(f.products))
		copy(out, f.products)
		return out
	}

	needle := strings.ToLower(term)
	var out []api.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// FetchCategory loads one category's products directly. It is independent
// of the paginated listing and leaves its state alone.
func (f *Fetcher) FetchCategory(ctx context.Context, category string) ([]api.Product, error) {
	ctx = ctxmanage.WithTraceId(ctx)
	products, err := f.client.Category(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category %q: %w", category, err)
	}
	return products, nil
}

// Products returns a copy of everything fetched so far, in arrival order.
func (f *Fetcher) Products() []api.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]api.Product, len(f.products))
	copy(out, f.products)
	return out
}

func (f *Fetcher) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Fetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}
