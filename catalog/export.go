package catalog

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// Sink receives exported products.
type Sink interface {
	Process(products ...*models.Product) error
}

// ExportStats summarizes an export walk.
type ExportStats struct {
	Pages    int
	Fetched  int
	Exported int
}

// Export walks the catalog one page at a time, applies the filters to each
// page on its own and hands the survivors to sink. At most one page is held
// in memory. index may be nil.
func Export(ctx context.Context, fetcher Fetcher, sink Sink, search, category string, index *CategoryIndex) (ExportStats, error) {
	var stats ExportStats
	for page, total := 1, 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := fetcher.FetchPage(ctx, page)
		if err != nil {
			return stats, errors.Wrapf(err, "export page %d", page)
		}
		if result == nil {
			break
		}
		if result.TotalPages > total {
			total = result.TotalPages
		}

		items := Filter(result.Items, search, category)
		if index != nil {
			items = index.Annotate(items)
		}
		batch := make([]*models.Product, len(items))
		for i := range items {
			batch[i] = &items[i]
		}
		if err := sink.Process(batch...); err != nil {
			return stats, errors.Wrapf(err, "export page %d", page)
		}

		stats.Pages++
		stats.Fetched += len(result.Items)
		stats.Exported += len(items)
		slog.Debug("exported catalog page",
			slog.Int("page", page),
			slog.Int("total_pages", total),
			slog.Int("exported", len(items)),
		)
	}
	return stats, nil
}
