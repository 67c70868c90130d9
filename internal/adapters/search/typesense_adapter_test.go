package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

func deref[T any](t *testing.T, p *T) T {
	t.Helper()
	require.NotNil(t, p)
	return *p
}

func TestItemSearchParams(t *testing.T) {
	tests := []struct {
		name      string
		query     repositories.ItemQuery
		wantQ     []string
		wantInfix string
		wantFilt  string
	}{
		{
			name:      "one search per token",
			query:     repositories.ItemQuery{Tokens: []string{"kham", "tong", "quat"}, Status: entities.ItemStatusActive},
			wantQ:     []string{"kham", "tong", "quat"},
			wantInfix: "always,always",
			wantFilt:  "status:=`active`",
		},
		{
			name:      "duplicate tokens searched once",
			query:     repositories.ItemQuery{Tokens: []string{"mau", "MAU", "mau"}},
			wantQ:     []string{"mau"},
			wantInfix: "always,always",
		},
		{
			name:      "no tokens matches everything",
			query:     repositories.ItemQuery{Kind: entities.ItemKindPackage},
			wantQ:     []string{"*"},
			wantInfix: "off,off",
			wantFilt:  "service_type:=`package`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := itemSearchParams(tt.query)
			require.Len(t, params, len(tt.wantQ))

			for i, p := range params {
				assert.Equal(t, tt.wantQ[i], deref(t, p.Q))
				assert.Equal(t, "name,keywords", deref(t, p.QueryBy))
				assert.Equal(t, tt.wantInfix, deref(t, p.Infix))
				assert.Equal(t, "0", deref(t, p.NumTypos))
				assert.Equal(t, 0, deref(t, p.DropTokensThreshold))
				assert.Equal(t, "false", deref(t, p.Prefix))
				if tt.wantFilt == "" {
					assert.Nil(t, p.FilterBy)
				} else {
					assert.Equal(t, tt.wantFilt, deref(t, p.FilterBy))
				}
			}
		})
	}
}

func TestSuggestionSearchParams(t *testing.T) {
	params := suggestionSearchParams(repositories.SuggestionQuery{
		Raw:          "Xét",
		Normalized:   "xet",
		Status:       entities.ItemStatusActive,
		BookableOnly: true,
	})
	require.Len(t, params, 2)

	name, keywords := params[0], params[1]
	assert.Equal(t, "Xét", deref(t, name.Q))
	assert.Equal(t, "name", deref(t, name.QueryBy))
	assert.Equal(t, "true", deref(t, name.Prefix))
	assert.Equal(t, "always", deref(t, name.Infix))

	assert.Equal(t, "xet", deref(t, keywords.Q))
	assert.Equal(t, "keywords", deref(t, keywords.QueryBy))
	assert.Equal(t, "false", deref(t, keywords.Prefix))

	for _, p := range params {
		assert.Equal(t, "0", deref(t, p.NumTypos))
		assert.Equal(t, "status:=`active` && is_bookable:=true", deref(t, p.FilterBy))
	}

	assert.Empty(t, suggestionSearchParams(repositories.SuggestionQuery{Raw: "  "}))
}

func TestMergeByRecency(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	item := func(id string, age int) *entities.CatalogItem {
		return &entities.CatalogItem{ID: id, CreatedAt: base.Add(-time.Duration(age) * time.Hour)}
	}

	// four items match every token, a fifth matches only the last one
	all := []*entities.CatalogItem{item("a", 1), item("b", 2), item("c", 3), item("d", 4)}
	results := [][]*entities.CatalogItem{
		all,
		all,
		append(append([]*entities.CatalogItem{}, all...), item("e", 0)),
	}

	merged := mergeByRecency(results, 0)
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids(merged))

	assert.Equal(t, []string{"e", "a"}, ids(mergeByRecency(results, 2)))

	tied := [][]*entities.CatalogItem{{item("z", 1)}, {item("y", 1)}}
	assert.Equal(t, []string{"y", "z"}, ids(mergeByRecency(tied, 0)))

	single := [][]*entities.CatalogItem{{item("q", 5), item("p", 1)}}
	assert.Equal(t, []string{"q", "p"}, ids(mergeByRecency(single, 0)), "a single search keeps index order")
}

func TestExactSearchOmitsEmptyFilter(t *testing.T) {
	p := exactSearch("mau", "keywords", "always", "")
	assert.Nil(t, p.FilterBy)
	assert.Equal(t, "created_at:desc", deref(t, p.SortBy))
}

func ids(items []*entities.CatalogItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
