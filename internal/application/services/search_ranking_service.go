package services

import (
	"sort"
	"strings"

	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/pkg/textnorm"
)

// DefaultZeroScoreThreshold is how many positive-score items a ranking needs
// before zero-score items are dropped.
const DefaultZeroScoreThreshold = 10

// ScoringWeights is the point table of the relevance scorer.
//
// NameExact, NamePrefix and NameContains are tiers: only the highest one that
// applies is awarded.
type ScoringWeights struct {
	NameExact        int
	NamePrefix       int
	NameContains     int
	TokenInName      int
	AllTokensInName  int
	TokenInKeywords  int
	TokenInDesc      int
	PackageBoost     int
	TieredPriceBoost int
}

// DefaultScoringWeights returns the production point table
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		NameExact:        1000,
		NamePrefix:       500,
		NameContains:     300,
		TokenInName:      50,
		AllTokensInName:  100,
		TokenInKeywords:  20,
		TokenInDesc:      10,
		PackageBoost:     25,
		TieredPriceBoost: 10,
	}
}

// Override returns w with every non-zero field of o applied
func (w ScoringWeights) Override(o ScoringWeights) ScoringWeights {
	pick := func(base, override int) int {
		if override != 0 {
			return override
		}
		return base
	}
	return ScoringWeights{
		NameExact:        pick(w.NameExact, o.NameExact),
		NamePrefix:       pick(w.NamePrefix, o.NamePrefix),
		NameContains:     pick(w.NameContains, o.NameContains),
		TokenInName:      pick(w.TokenInName, o.TokenInName),
		AllTokensInName:  pick(w.AllTokensInName, o.AllTokensInName),
		TokenInKeywords:  pick(w.TokenInKeywords, o.TokenInKeywords),
		TokenInDesc:      pick(w.TokenInDesc, o.TokenInDesc),
		PackageBoost:     pick(w.PackageBoost, o.PackageBoost),
		TieredPriceBoost: pick(w.TieredPriceBoost, o.TieredPriceBoost),
	}
}

// SearchRankingService scores candidates against a query and ranks them
type SearchRankingService struct {
	weights            ScoringWeights
	zeroScoreThreshold int
}

// NewSearchRankingService creates a ranking service with the given weights
func NewSearchRankingService(weights ScoringWeights, zeroScoreThreshold int) *SearchRankingService {
	if zeroScoreThreshold <= 0 {
		zeroScoreThreshold = DefaultZeroScoreThreshold
	}
	return &SearchRankingService{
		weights:            weights,
		zeroScoreThreshold: zeroScoreThreshold,
	}
}

// Weights returns the point table in use
func (s *SearchRankingService) Weights() ScoringWeights {
	return s.weights
}

// Score computes the relevance of one item. It reads nothing but its
// arguments, so scores never depend on other items in the request.
func (s *SearchRankingService) Score(item *entities.CatalogItem, queryNormalized string, tokens []string) int {
	w := s.weights
	name := textnorm.Normalize(item.Name)
	keywords := strings.ToLower(item.Keywords)
	description := textnorm.Normalize(item.DescriptionText())

	score := 0
	if queryNormalized != "" {
		switch {
		case name == queryNormalized:
			score += w.NameExact
		case strings.HasPrefix(name, queryNormalized):
			score += w.NamePrefix
		case strings.Contains(name, queryNormalized):
			score += w.NameContains
		}
	}

	inName := 0
	for _, token := range tokens {
		if strings.Contains(name, token) {
			score += w.TokenInName
			inName++
		}
		if strings.Contains(keywords, token) {
			score += w.TokenInKeywords
		}
		if strings.Contains(description, token) {
			score += w.TokenInDesc
		}
	}
	if len(tokens) > 1 && inName == len(tokens) {
		score += w.AllTokensInName
	}

	if item.IsPackage() {
		score += w.PackageBoost
	}
	if item.HasTieredPricing() {
		score += w.TieredPriceBoost
	}

	return score
}

// ScoreAll scores every candidate, keeping retrieval order
func (s *SearchRankingService) ScoreAll(items []*entities.CatalogItem, query SearchQuery) []entities.ScoredItem {
	scored := make([]entities.ScoredItem, len(items))
	for i, item := range items {
		scored[i] = entities.ScoredItem{
			Item:  item,
			Score: s.Score(item, query.Normalized, query.Tokens),
		}
	}
	return scored
}

// Unscored wraps candidates without scoring them, for queries with no text
func Unscored(items []*entities.CatalogItem) []entities.ScoredItem {
	scored := make([]entities.ScoredItem, len(items))
	for i, item := range items {
		scored[i] = entities.ScoredItem{Item: item}
	}
	return scored
}

// Rank orders scored items by descending score, ties in input order. With a
// query, zero-score items are dropped once enough items score above zero. The
// result holds at most limit items; a non-positive limit keeps everything.
func (s *SearchRankingService) Rank(scored []entities.ScoredItem, limit int, hasQuery bool) []entities.ScoredItem {
	ranked := make([]entities.ScoredItem, len(scored))
	copy(ranked, scored)

	if hasQuery {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score > ranked[j].Score
		})

		positive := 0
		for _, r := range ranked {
			if r.Score > 0 {
				positive++
			}
		}
		// sorted descending, so the positive items form a prefix
		if positive >= s.zeroScoreThreshold {
			ranked = ranked[:positive]
		}
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
