package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
)

// DefaultK is the cut-off used for Recall@K and MRR@K
const DefaultK = 10

// SearchResultProvider runs a catalog search
type SearchResultProvider interface {
	Search(ctx context.Context, params services.SearchParams) (*entities.SearchResult, error)
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	searchService SearchResultProvider
	k             int
}

func NewRunner(svc SearchResultProvider, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{searchService: svc, k: k}
}

// Run executes every golden query. A failing query scores zero and is counted
// in FailedQueries; it does not abort the run.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		K:            r.k,
		TotalQueries: len(queries),
		ByCategory:   make(map[Category]*CategorySummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		res, err := r.searchService.Search(ctx, services.SearchParams{
			Query:    gq.Query,
			District: gq.District,
			City:     gq.City,
			Limit:    r.k,
		})
		result := EvalResult{
			QueryID:  gq.ID,
			Query:    gq.Query,
			Category: gq.Category,
			Latency:  time.Since(start),
		}

		if err != nil {
			result.Err = err.Error()
			summary.FailedQueries++
		} else {
			result.RetrievedIDs = make([]string, len(res.Items))
			for i, item := range res.Items {
				result.RetrievedIDs[i] = item.ID
			}
			result.ResultCount = res.Total
			result.Recall = RecallAtK(gq.ExpectedIDs, result.RetrievedIDs, r.k)
			result.MRR = MRRAtK(gq.ExpectedIDs, result.RetrievedIDs, r.k)
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgRecall += res.Recall
	s.AvgMRR += res.MRR
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	cs, ok := s.ByCategory[res.Category]
	if !ok {
		cs = &CategorySummary{}
		s.ByCategory[res.Category] = cs
	}
	cs.Count++
	cs.AvgRecall += res.Recall
	cs.AvgMRR += res.MRR
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecall /= n
		s.AvgMRR /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, cs := range s.ByCategory {
		if cs.Count > 0 {
			n := float64(cs.Count)
			cs.AvgRecall /= n
			cs.AvgMRR /= n
		}
	}
}
