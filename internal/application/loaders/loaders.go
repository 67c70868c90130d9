package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/catalogsearch/internal/domain/entities"
	"github.com/zatekoja/catalogsearch/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is how long a loader collects keys before issuing one store call
const batchWait = 2 * time.Millisecond

// Loaders contains the request-scoped dataloaders
type Loaders struct {
	ProviderLoader *dataloader.Loader[string, *entities.Provider]
}

// NewLoaders creates a new instance of Loaders. Loaders cache for their whole
// lifetime, so build one per request.
func NewLoaders(providerRepo repositories.ProviderRepository) *Loaders {
	return &Loaders{
		ProviderLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Provider] {
			results := make([]*dataloader.Result[*entities.Provider], len(keys))
			providers, err := providerRepo.GetByIDs(ctx, keys)

			providerMap := make(map[string]*entities.Provider)
			if err == nil {
				for _, p := range providers {
					providerMap[p.ID] = p
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Provider]{Error: err}
				} else {
					// unknown providers resolve to nil; the item is still shown
					results[i] = &dataloader.Result[*entities.Provider]{Data: providerMap[key]}
				}
			}
			return results
		}, dataloader.WithWait[string, *entities.Provider](batchWait)),
	}
}

// Providers resolves the given ids in one batch. Missing providers are absent
// from the returned map.
func (l *Loaders) Providers(ctx context.Context, ids []string) (map[string]*entities.Provider, error) {
	out := make(map[string]*entities.Provider, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	providers, errs := l.ProviderLoader.LoadMany(ctx, ids)()
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil {
			return nil, errs[i]
		}
		if i < len(providers) && providers[i] != nil {
			out[id] = providers[i]
		}
	}
	return out, nil
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
