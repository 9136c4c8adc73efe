package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// ViewState is what a fetch-driven view renders.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewError
	ViewEmpty
	ViewContent
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewContent:
		return "content"
	default:
		return "unknown"
	}
}

// Listing is the renderable product listing.
type Listing struct {
	State        ViewState
	Items        []models.Product
	Shown        int
	TotalResults int
	Page         int
	TotalPages   int
	Search       string
	Category     string
	CategoryName string
	Err          error
}

// Summary renders the "Showing X of Y products" line.
func (l Listing) Summary() string {
	s := fmt.Sprintf("Showing %d of %d products", l.Shown, l.TotalResults)
	if l.CategoryName != "" {
		s += " in " + l.CategoryName
	}
	return s
}

// Browser combines the pager, the client-side filters and the category join
// into the catalog listing view. Filters only ever apply to the page held.
type Browser struct {
	pager *Pager
	index *CategoryIndex

	mu       sync.Mutex
	search   string
	category string
}

// NewBrowser builds a browser over fetcher. index may be nil.
func NewBrowser(fetcher Fetcher, index *CategoryIndex) *Browser {
	return &Browser{
		pager:    NewPager(fetcher),
		index:    index,
		category: AllCategories,
	}
}

// Pager exposes the underlying pager for navigation.
func (b *Browser) Pager() *Pager {
	return b.pager
}

// Mount loads categories and the first page. A category failure only costs
// the name join; the listing still loads.
func (b *Browser) Mount(ctx context.Context) error {
	if b.index != nil {
		if err := b.index.Refresh(ctx); err != nil {
			slog.Warn("category lookup unavailable", slog.Any("error", err))
		}
	}
	return b.pager.Load(ctx)
}

// SetSearch changes the search text. No fetch is issued.
func (b *Browser) SetSearch(text string) {
	b.mu.Lock()
	b.search = text
	b.mu.Unlock()
}

// SetCategory changes the category filter and reloads page one when it
// actually changed. Before Mount it only records the selection.
func (b *Browser) SetCategory(ctx context.Context, id string) error {
	if id == "" {
		id = AllCategories
	}
	b.mu.Lock()
	changed := b.category != id
	b.category = id
	b.mu.Unlock()
	if !changed {
		return nil
	}
	if snap := b.pager.Snapshot(); !snap.Loaded && snap.Status == StatusIdle {
		return nil
	}
	return b.pager.Load(ctx)
}

// ClearFilters resets search and category.
func (b *Browser) ClearFilters(ctx context.Context) error {
	b.SetSearch("")
	return b.SetCategory(ctx, AllCategories)
}

// Listing filters the held page and reports what to render.
func (b *Browser) Listing() Listing {
	b.mu.Lock()
	search, category := b.search, b.category
	b.mu.Unlock()

	snap := b.pager.Snapshot()
	items := Filter(snap.Items, search, category)
	if b.index != nil {
		items = b.index.Annotate(items)
	}

	l := Listing{
		Items:        items,
		Shown:        len(items),
		TotalResults: snap.TotalResults,
		Page:         snap.Page,
		TotalPages:   snap.TotalPages,
		Search:       search,
		Category:     category,
		Err:          snap.Err,
	}
	if category != AllCategories {
		l.CategoryName = category
		if b.index != nil {
			l.CategoryName = b.index.Name(category)
		}
	}

	switch {
	case snap.Status == StatusLoading, !snap.Loaded && snap.Status == StatusIdle:
		l.State = ViewLoading
	case snap.Status == StatusError:
		l.State = ViewError
	case len(items) == 0:
		l.State = ViewEmpty
	default:
		l.State = ViewContent
	}
	return l
}
