package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/catalogsearch/internal/api/handlers"
	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/catalogsearch/pkg/errors"
)

type MockCatalogSearcher struct {
	mock.Mock
}

func (m *MockCatalogSearcher) Search(ctx context.Context, params services.SearchParams) (*entities.SearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchResult), args.Error(1)
}

type MockSuggester struct {
	mock.Mock
}

func (m *MockSuggester) Suggest(ctx context.Context, q string) ([]*entities.Suggestion, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Suggestion), args.Error(1)
}

func TestSearchServices_ParsesParams(t *testing.T) {
	searcher := new(MockCatalogSearcher)
	handler := handlers.NewSearchHandler(searcher, new(MockSuggester))

	minPrice := 100.0
	maxPrice := 2500.5
	want := services.SearchParams{
		Query:    "Khám Tổng Quát",
		District: "Quận 1",
		City:     "Hồ Chí Minh",
		Filters: services.SearchFilters{
			ProviderID: "p1",
			Kind:       entities.ItemKindPackage,
			MinPrice:   &minPrice,
			MaxPrice:   &maxPrice,
		},
		Limit:      20,
		WithScores: true,
	}
	q := "Khám Tổng Quát"
	searcher.On("Search", mock.Anything, want).Return(&entities.SearchResult{
		Items: []entities.SearchResultItem{{CatalogItem: &entities.CatalogItem{ID: "i1", Name: "Khám Tổng Quát"}}},
		Total: 1,
		Query: &q,
	}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/search/services?q=Kh%C3%A1m+T%E1%BB%95ng+Qu%C3%A1t&district=Qu%E1%BA%ADn+1&city=H%E1%BB%93+Ch%C3%AD+Minh"+
			"&provider_id=p1&service_type=PACKAGE&min_price=100&max_price=2500.5&limit=20&debug=true", nil)
	w := httptest.NewRecorder()

	handler.SearchServices(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, "Khám Tổng Quát", body["query"])
	searcher.AssertExpectations(t)
}

func TestSearchServices_DropsMalformedFilters(t *testing.T) {
	searcher := new(MockCatalogSearcher)
	handler := handlers.NewSearchHandler(searcher, new(MockSuggester))

	searcher.On("Search", mock.Anything, services.SearchParams{Query: "mau"}).
		Return(&entities.SearchResult{Items: []entities.SearchResultItem{}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/search/services?q=mau&min_price=cheap&max_price=NaN&limit=ten&service_type=bundle&debug=maybe", nil)
	w := httptest.NewRecorder()

	handler.SearchServices(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{}, body["items"])
	assert.Equal(t, float64(0), body["total"])
	assert.Nil(t, body["query"])
	searcher.AssertExpectations(t)
}

func TestSearchServices_SanitizesQuery(t *testing.T) {
	searcher := new(MockCatalogSearcher)
	handler := handlers.NewSearchHandler(searcher, new(MockSuggester))

	searcher.On("Search", mock.Anything, mock.MatchedBy(func(p services.SearchParams) bool {
		return p.Query == "xet nghiem & mau"
	})).Return(&entities.SearchResult{Items: []entities.SearchResultItem{}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/search/services?q=%3Cscript%3Ealert(1)%3C%2Fscript%3E%3Cb%3Exet+nghiem%3C%2Fb%3E+%26+mau", nil)
	w := httptest.NewRecorder()

	handler.SearchServices(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searcher.AssertExpectations(t)
}

func TestSearchServices_KeepsLiteralAngleBrackets(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "<5 tuoi", want: "<5 tuoi"},
		{raw: "xet nghiem < 3 ngay", want: "xet nghiem < 3 ngay"},
		{raw: "sieu am > 2 lan", want: "sieu am > 2 lan"},
		{raw: "kham &amp; tu van", want: "kham &amp; tu van"},
		{raw: "<i>kham</i> nhi", want: "kham nhi"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			searcher := new(MockCatalogSearcher)
			handler := handlers.NewSearchHandler(searcher, new(MockSuggester))

			searcher.On("Search", mock.Anything, mock.MatchedBy(func(p services.SearchParams) bool {
				return p.Query == tt.want
			})).Return(&entities.SearchResult{Items: []entities.SearchResultItem{}}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/search/services?q="+url.QueryEscape(tt.raw), nil)
			w := httptest.NewRecorder()

			handler.SearchServices(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			searcher.AssertExpectations(t)
		})
	}
}

func TestSearchServices_StoreUnavailable(t *testing.T) {
	searcher := new(MockCatalogSearcher)
	handler := handlers.NewSearchHandler(searcher, new(MockSuggester))

	searcher.On("Search", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewStoreUnavailableError("failed to retrieve candidates", errors.New("timeout")))

	req := httptest.NewRequest(http.MethodGet, "/api/search/services?q=mau", nil)
	w := httptest.NewRecorder()

	handler.SearchServices(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "items")
	assert.Equal(t, "catalog store unavailable", body["error"])
}

func TestSearchSuggestions(t *testing.T) {
	suggester := new(MockSuggester)
	handler := handlers.NewSearchHandler(new(MockCatalogSearcher), suggester)

	suggester.On("Suggest", mock.Anything, "sieu am").Return([]*entities.Suggestion{
		{ID: "i1", Name: "Siêu Âm Bụng", Kind: entities.ItemKindAtomic, ProviderName: "Medlatec", Price: 250000},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggestions?q=+sieu+am+", nil)
	w := httptest.NewRecorder()

	handler.SearchSuggestions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Siêu Âm Bụng", body[0]["name"])
	assert.Equal(t, "atomic", body[0]["service_type"])
	assert.Equal(t, "Medlatec", body[0]["provider_name"])
}

func TestSearchSuggestions_EmptyIsArray(t *testing.T) {
	suggester := new(MockSuggester)
	handler := handlers.NewSearchHandler(new(MockCatalogSearcher), suggester)

	suggester.On("Suggest", mock.Anything, "k").Return([]*entities.Suggestion{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggestions?q=k", nil)
	w := httptest.NewRecorder()

	handler.SearchSuggestions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSearchSuggestions_Failure(t *testing.T) {
	suggester := new(MockSuggester)
	handler := handlers.NewSearchHandler(new(MockCatalogSearcher), suggester)

	suggester.On("Suggest", mock.Anything, "mau").Return(nil, errors.New("boom"))

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggestions?q=mau", nil)
	w := httptest.NewRecorder()

	handler.SearchSuggestions(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
