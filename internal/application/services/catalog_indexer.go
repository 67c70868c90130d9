package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultIndexPageSize    = 250
	DefaultIndexConcurrency = 8
)

// ItemIndexer writes catalog items into the search index
type ItemIndexer interface {
	Index(ctx context.Context, item *entities.CatalogItem) error
}

// IndexSummary reports the outcome of a reindex run
type IndexSummary struct {
	Pages    int
	Indexed  int
	Failed   int
	Duration time.Duration
}

// CatalogIndexer copies the primary catalog into the search index page by page
type CatalogIndexer struct {
	source      repositories.CatalogRepository
	index       ItemIndexer
	pageSize    int
	concurrency int
}

// NewCatalogIndexer creates an indexer. Non-positive sizes use the defaults.
func NewCatalogIndexer(source repositories.CatalogRepository, index ItemIndexer, pageSize, concurrency int) *CatalogIndexer {
	if pageSize <= 0 {
		pageSize = DefaultIndexPageSize
	}
	if concurrency <= 0 {
		concurrency = DefaultIndexConcurrency
	}
	return &CatalogIndexer{
		source:      source,
		index:       index,
		pageSize:    pageSize,
		concurrency: concurrency,
	}
}

// Run pages through every catalog item and indexes it. Per-item failures are
// logged and counted; a failing page read aborts the run.
func (i *CatalogIndexer) Run(ctx context.Context) (*IndexSummary, error) {
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()
	summary := &IndexSummary{}

	for offset := 0; ; offset += i.pageSize {
		page, err := i.source.ListItems(ctx, repositories.ListFilter{Limit: i.pageSize, Offset: offset})
		if err != nil {
			return summary, storeError("failed to list catalog items", err)
		}
		if len(page) == 0 {
			break
		}
		summary.Pages++

		var indexed, failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(i.concurrency)
		for _, item := range page {
			g.Go(func() error {
				if err := i.index.Index(gctx, item); err != nil {
					failed.Add(1)
					logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to index catalog item")
					return nil
				}
				indexed.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return summary, err
		}

		summary.Indexed += int(indexed.Load())
		summary.Failed += int(failed.Load())

		if len(page) < i.pageSize {
			break
		}
	}

	summary.Duration = time.Since(start)
	logger.Info().
		Int("pages", summary.Pages).
		Int("indexed", summary.Indexed).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("catalog reindex finished")
	return summary, nil
}
