// Package remote abstracts the object store that publishes dataset releases.
package remote

import (
	"context"
	"io"
)

// Page is one page of a key listing. NextToken is empty on the last page.
type Page struct {
	Keys      []string
	NextToken string
}

// Store is the minimal object-store surface the cache consumes.
// List must be repeatable with the returned continuation token until the
// token comes back empty. Errors propagate verbatim; retry policy belongs
// to the underlying client.
type Store interface {
	List(ctx context.Context, prefix, continuationToken string) (Page, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
