package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/catalogsearch/internal/app"
	"github.com/zatekoja/catalogsearch/internal/evaluation"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
	"github.com/zatekoja/catalogsearch/pkg/config"
)

func main() {
	var goldenPath string
	var k int
	var minRecall, minMRR float64
	flag.StringVar(&goldenPath, "golden", "testdata/golden_queries.json", "path to the golden query set")
	flag.IntVar(&k, "k", evaluation.DefaultK, "cut-off for recall and MRR")
	flag.Float64Var(&minRecall, "min-recall", 0, "fail when average recall drops below this value")
	flag.Float64Var(&minMRR, "min-mrr", 0, "fail when average MRR drops below this value")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("catalog-evaluate", cfg.Environment)

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("invalid golden queries")
	}

	ctx := context.Background()
	application, err := app.Build(ctx, cfg, nil, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog")
	}
	defer application.Close()

	summary, err := evaluation.NewRunner(application.Search, k).Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	violations := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinRecall: minRecall,
		MinMRR:    minMRR,
	}).Check(summary)
	for _, v := range violations {
		log.Error().Str("violation", v).Msg("evaluation guardrail failed")
	}
	if len(violations) > 0 {
		application.Close()
		os.Exit(1)
	}
}
