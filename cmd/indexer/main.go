package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/catalogsearch/internal/adapters/database"
	"github.com/zatekoja/catalogsearch/internal/adapters/search"
	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	var pageSize, concurrency int
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&pageSize, "page-size", services.DefaultIndexPageSize, "catalog items read per page")
	flag.IntVar(&concurrency, "concurrency", services.DefaultIndexConcurrency, "concurrent index writes")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid interval %q: %v\n", intervalValue, err)
			os.Exit(2)
		}
		if interval <= 0 {
			fmt.Fprintln(os.Stderr, "interval must be greater than zero")
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("catalog-indexer", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset, pageSize, concurrency); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool, pageSize, concurrency int) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", tsClient.Collection()).Msg("deleting collection before reindex")
		if err := tsClient.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	indexer := services.NewCatalogIndexer(
		database.NewCatalogAdapter(pgClient, nil),
		search.NewTypesenseAdapter(tsClient, nil),
		pageSize,
		concurrency,
	)

	summary, err := indexer.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d catalog items failed to index", summary.Failed, summary.Failed+summary.Indexed)
	}
	return nil
}
