package catalog

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// CategoryLister fetches the category collection.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CategoryIndex joins products to category names by id. Categories are
// fetched independently of products and cached in a bounded LRU.
type CategoryIndex struct {
	source CategoryLister
	cache  *lru.Cache[string, models.Category]

	mu      sync.RWMutex
	ordered []models.Category
}

// NewCategoryIndex builds an empty index holding at most size categories.
func NewCategoryIndex(source CategoryLister, size int) (*CategoryIndex, error) {
	cache, err := lru.New[string, models.Category](size)
	if err != nil {
		return nil, errors.Wrap(err, "create category cache")
	}
	return &CategoryIndex{source: source, cache: cache}, nil
}

// Refresh replaces the index with the backend's current categories. On
// failure the previous contents are kept.
func (ix *CategoryIndex) Refresh(ctx context.Context) error {
	categories, err := ix.source.ListCategories(ctx)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cache.Purge()
	for _, c := range categories {
		if c.ID != "" {
			ix.cache.Add(c.ID, c)
		}
	}
	ix.ordered = categories
	return nil
}

// Lookup returns the category with id.
func (ix *CategoryIndex) Lookup(id string) (models.Category, bool) {
	return ix.cache.Get(id)
}

// Name resolves id to a display name, falling back to the id itself.
func (ix *CategoryIndex) Name(id string) string {
	if id == "" || id == AllCategories {
		return ""
	}
	if c, ok := ix.cache.Get(id); ok && c.Name != "" {
		return c.Name
	}
	return id
}

// Categories returns the categories in backend order.
func (ix *CategoryIndex) Categories() []models.Category {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]models.Category, len(ix.ordered))
	copy(out, ix.ordered)
	return out
}

// Annotate returns copies of items with CategoryName filled in where the
// backend left it empty.
func (ix *CategoryIndex) Annotate(items []models.Product) []models.Product {
	out := make([]models.Product, len(items))
	for i, item := range items {
		if item.CategoryName == "" && item.CategoryID != "" {
			if c, ok := ix.cache.Get(item.CategoryID); ok {
				item.CategoryName = c.Name
			}
		}
		out[i] = item
	}
	return out
}
