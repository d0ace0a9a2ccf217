// Package registry discovers release manifests published in the object store.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/quarrydata/quarry/internal/manifest"
	"github.com/quarrydata/quarry/internal/remote"
)

// Registry enumerates manifest keys under the release prefix.
type Registry struct {
	store remote.Store
}

// New returns a registry backed by the given store.
func New(store remote.Store) *Registry {
	return &Registry{store: store}
}

// ListManifestKeys walks every listing page under the release prefix and
// returns the sorted, deduplicated set of keys matching the manifest naming
// convention. A single page is never assumed to suffice.
func (r *Registry) ListManifestKeys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	token := ""

	for {
		page, err := r.store.List(ctx, manifest.Prefix, token)
		if err != nil {
			return nil, fmt.Errorf("list manifests: %w", err)
		}
		for _, key := range page.Keys {
			if manifest.IsManifestKey(key) {
				seen[key] = struct{}{}
			}
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
