package handlers

import (
	"context"
	"html"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/zatekoja/catalogsearch/internal/application/services"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/infrastructure/observability"
)

// CatalogSearcher runs the ranked catalog search
type CatalogSearcher interface {
	Search(ctx context.Context, params services.SearchParams) (*entities.SearchResult, error)
}

// Suggester produces autocomplete suggestions
type Suggester interface {
	Suggest(ctx context.Context, q string) ([]*entities.Suggestion, error)
}

// SearchHandler handles catalog search HTTP requests
type SearchHandler struct {
	searcher  CatalogSearcher
	suggester Suggester
	policy    *bluemonday.Policy
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher CatalogSearcher, suggester Suggester) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		suggester: suggester,
		policy:    bluemonday.StrictPolicy(),
	}
}

// SearchServices handles GET /api/search/services
func (h *SearchHandler) SearchServices(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())
	query := r.URL.Query()

	params := services.SearchParams{
		Query:    h.sanitize(query.Get("q")),
		District: h.sanitize(query.Get("district")),
		City:     h.sanitize(query.Get("city")),
		Filters: services.SearchFilters{
			ProviderID: strings.TrimSpace(query.Get("provider_id")),
			Kind:       parseKind(logger, query),
			MinPrice:   parsePrice(logger, query, "min_price"),
			MaxPrice:   parsePrice(logger, query, "max_price"),
		},
		Limit:      parseLimit(logger, query),
		WithScores: parseBool(query.Get("debug")),
	}

	result, err := h.searcher.Search(r.Context(), params)
	if err != nil {
		logger.Error().Err(err).Str("query", params.Query).Msg("catalog search failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SearchSuggestions handles GET /api/search/suggestions
func (h *SearchHandler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())
	q := h.sanitize(r.URL.Query().Get("q"))

	suggestions, err := h.suggester.Suggest(r.Context(), q)
	if err != nil {
		logger.Error().Err(err).Str("query", q).Msg("suggestions failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, suggestions)
}

// markupPattern matches the start of a tag, end tag, comment or directive.
// A '<' followed by anything else is literal text.
var markupPattern = regexp.MustCompile(`<[a-zA-Z/!?]`)

// sanitize strips markup from free text. Input without anything tag-shaped
// is returned verbatim, so "<5 tuoi" or "a < b" reach the pipeline intact.
func (h *SearchHandler) sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !markupPattern.MatchString(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(s)))
}

// Malformed filters are dropped with a warning rather than failing the request.

func parseKind(logger *zerolog.Logger, query url.Values) entities.ItemKind {
	raw := strings.TrimSpace(query.Get("service_type"))
	switch kind := entities.ItemKind(strings.ToLower(raw)); kind {
	case "":
		return ""
	case entities.ItemKindAtomic, entities.ItemKindPackage:
		return kind
	default:
		logger.Warn().Str("service_type", raw).Msg("ignoring unknown service_type filter")
		return ""
	}
}

func parsePrice(logger *zerolog.Logger, query url.Values, name string) *float64 {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Warn().Str(name, raw).Msg("ignoring malformed price filter")
		return nil
	}
	return &v
}

func parseLimit(logger *zerolog.Logger, query url.Values) int {
	raw := strings.TrimSpace(query.Get("limit"))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn().Str("limit", raw).Msg("ignoring malformed limit")
		return 0
	}
	return v
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
