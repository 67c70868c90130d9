package middleware

import (
	"net/http"

	"github.com/zatekoja/catalogsearch/internal/application/loaders"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

// LoadersMiddleware attaches fresh request-scoped dataloaders to each request
func LoadersMiddleware(providerRepo repositories.ProviderRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(providerRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
