package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
)

func newRanking() *SearchRankingService {
	return NewSearchRankingService(DefaultScoringWeights(), DefaultZeroScoreThreshold)
}

func TestScore_NameTiersDoNotStack(t *testing.T) {
	svc := newRanking()
	q := ParseQuery("sieu am", 2)

	exact := svc.Score(&entities.CatalogItem{Name: "Siêu Âm"}, q.Normalized, q.Tokens)
	prefix := svc.Score(&entities.CatalogItem{Name: "Siêu Âm Bụng"}, q.Normalized, q.Tokens)
	contains := svc.Score(&entities.CatalogItem{Name: "Gói Siêu Âm"}, q.Normalized, q.Tokens)

	// tier + 2 tokens in name + all-tokens bonus
	assert.Equal(t, 1000+50*2+100, exact)
	assert.Equal(t, 500+50*2+100, prefix)
	assert.Equal(t, 300+50*2+100, contains)
}

func TestScore_ExactBeatsSubstring(t *testing.T) {
	svc := newRanking()
	q := ParseQuery("xet nghiem mau", 2)

	base := entities.CatalogItem{Keywords: "mau", Description: "lay mau"}
	exact := base
	exact.Name = "Xét Nghiệm Máu"
	substring := base
	substring.Name = "Gói Xét Nghiệm Máu Tổng Quát"

	assert.Greater(t,
		svc.Score(&exact, q.Normalized, q.Tokens),
		svc.Score(&substring, q.Normalized, q.Tokens),
	)
}

func TestScore_FieldsAndBoosts(t *testing.T) {
	svc := newRanking()
	item := &entities.CatalogItem{
		Name:             "Gói Khám",
		Keywords:         "Tim Mach,noi soi",
		ShortDescription: "Kiểm tra tim",
		Description:      "Nội soi dạ dày",
		Kind:             entities.ItemKindPackage,
		TieredPricing:    []byte(`[{"qty":2,"price":100}]`),
	}
	q := ParseQuery("tim soi", 2)

	// keywords are lower-cased only: "tim" and "soi" both match
	// description is normalized: "kiem tra tim noi soi da day"
	want := 20*2 + 10*2 + 25 + 10
	assert.Equal(t, want, svc.Score(item, q.Normalized, q.Tokens))
}

func TestScore_KeywordsAreNotAccentFolded(t *testing.T) {
	svc := newRanking()
	item := &entities.CatalogItem{Name: "X", Keywords: "Khám bệnh"}
	q := ParseQuery("kham", 2)

	assert.Equal(t, 0, svc.Score(item, q.Normalized, q.Tokens))
}

func TestScore_DuplicateTokensCountEachTime(t *testing.T) {
	svc := newRanking()
	item := &entities.CatalogItem{Name: "Máu"}
	q := ParseQuery("mau mau", 2)
	require.Equal(t, []string{"mau", "mau"}, q.Tokens)

	// "mau mau" is not in the name, so no tier; both tokens hit the name
	assert.Equal(t, 50*2+100, svc.Score(item, q.Normalized, q.Tokens))
}

func TestScore_SingleTokenGetsNoAllTokensBonus(t *testing.T) {
	svc := newRanking()
	item := &entities.CatalogItem{Name: "Nội Soi"}
	q := ParseQuery("soi", 2)

	assert.Equal(t, 300+50, svc.Score(item, q.Normalized, q.Tokens))
}

func TestScore_IndependentOfOtherItems(t *testing.T) {
	svc := newRanking()
	q := ParseQuery("kham tong quat", 2)
	a := &entities.CatalogItem{ID: "a", Name: "Khám Tổng Quát", Kind: entities.ItemKindPackage}
	b := &entities.CatalogItem{ID: "b", Name: "Xét Nghiệm Máu", Keywords: "mau"}

	alone := svc.Score(a, q.Normalized, q.Tokens)
	together := svc.ScoreAll([]*entities.CatalogItem{b, a, b}, q)

	assert.Equal(t, alone, together[1].Score)
	assert.Equal(t, together[0].Score, together[2].Score)
}

func TestScoringWeights_Override(t *testing.T) {
	w := DefaultScoringWeights().Override(ScoringWeights{NameExact: 2000, PackageBoost: 1})

	assert.Equal(t, 2000, w.NameExact)
	assert.Equal(t, 1, w.PackageBoost)
	assert.Equal(t, 500, w.NamePrefix)

	svc := NewSearchRankingService(w, 0)
	item := &entities.CatalogItem{Name: "Soi", Kind: entities.ItemKindPackage}
	q := ParseQuery("soi", 2)
	assert.Equal(t, 2000+50+1, svc.Score(item, q.Normalized, q.Tokens))
}

func scoredItems(scores ...int) []entities.ScoredItem {
	out := make([]entities.ScoredItem, len(scores))
	for i, s := range scores {
		out[i] = entities.ScoredItem{
			Item:  &entities.CatalogItem{ID: fmt.Sprintf("item-%02d", i)},
			Score: s,
		}
	}
	return out
}

func rankedIDs(ranked []entities.ScoredItem) []string {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Item.ID
	}
	return ids
}

func TestRank_SortsDescendingAndKeepsTieOrder(t *testing.T) {
	svc := newRanking()

	ranked := svc.Rank(scoredItems(10, 50, 10, 50, 0), 0, true)

	assert.Equal(t, []string{"item-01", "item-03", "item-00", "item-02", "item-04"}, rankedIDs(ranked))
}

func TestRank_DropsZeroScoresWhenEnoughPositive(t *testing.T) {
	svc := newRanking()
	scores := []int{0, 5, 5, 5, 5, 5, 0, 5, 5, 5, 5, 5} // 10 positive, 2 zero

	ranked := svc.Rank(scoredItems(scores...), 200, true)

	assert.Len(t, ranked, 10)
	for _, r := range ranked {
		assert.Positive(t, r.Score)
	}
}

func TestRank_KeepsZeroScoresWhenFewPositive(t *testing.T) {
	svc := newRanking()

	ranked := svc.Rank(scoredItems(0, 3, 0, 2, 1), 200, true)

	assert.Equal(t, []string{"item-01", "item-03", "item-04", "item-00", "item-02"}, rankedIDs(ranked))
}

func TestRank_ThresholdIsConfigurable(t *testing.T) {
	svc := NewSearchRankingService(DefaultScoringWeights(), 3)

	ranked := svc.Rank(scoredItems(0, 3, 0, 2, 1), 200, true)

	assert.Equal(t, []string{"item-01", "item-03", "item-04"}, rankedIDs(ranked))
}

func TestRank_LimitBound(t *testing.T) {
	svc := newRanking()

	assert.Len(t, svc.Rank(scoredItems(1, 2, 3, 4, 5), 3, true), 3)
	assert.Len(t, svc.Rank(scoredItems(1, 2, 3), 10, true), 3)
	assert.Len(t, svc.Rank(scoredItems(1, 2, 3), 0, true), 3)
}

func TestRank_WithoutQueryPreservesOrder(t *testing.T) {
	svc := newRanking()
	input := Unscored([]*entities.CatalogItem{{ID: "c"}, {ID: "a"}, {ID: "b"}})

	ranked := svc.Rank(input, 2, false)

	assert.Equal(t, []string{"c", "a"}, rankedIDs(ranked))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	svc := newRanking()
	input := scoredItems(1, 2, 3)

	svc.Rank(input, 0, true)

	assert.Equal(t, []string{"item-00", "item-01", "item-02"}, rankedIDs(input))
}
