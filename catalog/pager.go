package catalog

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// ErrSuperseded is returned for a fetch whose response arrived after a newer
// fetch was issued. Its result is discarded.
var ErrSuperseded = errors.New("catalog: superseded by a newer page request")

// Fetcher loads one server page.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*models.PageResult, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, page int) (*models.PageResult, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, page int) (*models.PageResult, error) {
	return f(ctx, page)
}

// Status is the pager's state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the pager state.
type Snapshot struct {
	Status       Status
	Page         int
	TotalPages   int
	TotalResults int
	Items        []models.Product
	Err          error
	// Loaded is false until the first page has been fetched successfully.
	Loaded bool
}

// Pager holds exactly one page of results and moves between pages on request.
// Every fetch gets a sequence number; only the response to the most recent
// fetch is applied.
type Pager struct {
	fetcher Fetcher

	mu           sync.Mutex
	status       Status
	page         int
	target       int
	totalPages   int
	totalResults int
	items        []models.Product
	err          error
	loaded       bool
	seq          uint64
	resetHooks   []func()
}

// NewPager returns a pager positioned on page one with nothing loaded.
func NewPager(fetcher Fetcher) *Pager {
	return &Pager{
		fetcher:    fetcher,
		page:       1,
		target:     1,
		totalPages: 1,
	}
}

// OnReset registers fn to run after every successful page replacement.
// View-local selections (such as a selected image) hook in here.
func (p *Pager) OnReset(fn func()) {
	p.mu.Lock()
	p.resetHooks = append(p.resetHooks, fn)
	p.mu.Unlock()
}

// Load fetches page one unconditionally. It is used on mount and whenever a
// filter change requires starting over.
func (p *Pager) Load(ctx context.Context) error {
	return p.fetch(ctx, 1)
}

// GoToPage fetches page n. It is a no-op when n is the page already shown or
// lies outside [1, TotalPages]. From the error state the current page may be
// requested again.
func (p *Pager) GoToPage(ctx context.Context, n int) error {
	if !p.CanGoTo(n) {
		return nil
	}
	return p.fetch(ctx, n)
}

// CanGoTo reports whether GoToPage(n) would issue a request.
func (p *Pager) CanGoTo(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 || n > p.totalPages {
		return false
	}
	return !(p.loaded && n == p.page && p.status != StatusError)
}

// Next moves one page forward.
func (p *Pager) Next(ctx context.Context) error {
	return p.GoToPage(ctx, p.Page()+1)
}

// Prev moves one page back.
func (p *Pager) Prev(ctx context.Context) error {
	return p.GoToPage(ctx, p.Page()-1)
}

// Retry re-issues the most recently requested page.
func (p *Pager) Retry(ctx context.Context) error {
	p.mu.Lock()
	target := p.target
	p.mu.Unlock()
	return p.fetch(ctx, target)
}

// Page returns the page currently held.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Loading reports whether a fetch is in flight. Navigation controls should be
// disabled while it is true.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == StatusLoading
}

// Snapshot returns a copy of the current state.
func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]models.Product, len(p.items))
	copy(items, p.items)
	return Snapshot{
		Status:       p.status,
		Page:         p.page,
		TotalPages:   p.totalPages,
		TotalResults: p.totalResults,
		Items:        items,
		Err:          p.err,
		Loaded:       p.loaded,
	}
}

func (p *Pager) fetch(ctx context.Context, n int) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.target = n
	p.status = StatusLoading
	p.mu.Unlock()

	result, err := p.fetcher.FetchPage(ctx, n)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		p.status = StatusError
		p.err = err
		p.mu.Unlock()
		return err
	}
	if result == nil {
		result = &models.PageResult{}
	}
	page := result.CurrentPage
	if page < 1 {
		page = n
	}
	totalPages := result.TotalPages
	if totalPages < page {
		totalPages = page
	}
	p.status = StatusIdle
	p.err = nil
	p.loaded = true
	p.page = page
	p.totalPages = totalPages
	p.totalResults = result.TotalResults
	p.items = result.Items
	hooks := make([]func(), len(p.resetHooks))
	copy(hooks, p.resetHooks)
	p.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return nil
}
