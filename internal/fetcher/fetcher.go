// Package fetcher materializes manifest file records on local disk.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quarrydata/quarry/internal/integrity"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/models"
	"github.com/quarrydata/quarry/internal/remote"
	"github.com/quarrydata/quarry/internal/service"
	"github.com/quarrydata/quarry/internal/utils"
)

// Fetcher downloads record bytes from the object store (by key) or over
// plain HTTPS (by record URL) and writes them to the record's local path.
type Fetcher struct {
	checker *integrity.Checker
	store   remote.Store
	client  service.HTTPClient
}

// NewStoreFetcher fetches through the object store; the remote key is the
// record's relative path (remote layout mirrors the cache root layout).
func NewStoreFetcher(store remote.Store, checker *integrity.Checker) *Fetcher {
	if checker == nil {
		checker = integrity.New()
	}
	return &Fetcher{checker: checker, store: store}
}

// NewHTTPFetcher fetches the record's public URL over HTTPS instead of the
// object-store API.
func NewHTTPFetcher(client service.HTTPClient, checker *integrity.Checker) *Fetcher {
	if checker == nil {
		checker = integrity.New()
	}
	return &Fetcher{checker: checker, client: client}
}

// Materialize ensures the record's content is present at its local path and
// returns that path. A valid existing file short-circuits without any remote
// call; a missing, partial or corrupted file is re-fetched whole. Hash
// verification after download is the checker's job on next access.
func (f *Fetcher) Materialize(ctx context.Context, record models.FileRecord) (string, error) {
	ok, err := f.checker.Exists(record)
	if err != nil {
		return "", err
	}
	if ok {
		return record.LocalPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(record.LocalPath), 0o755); err != nil {
		return "", fmt.Errorf("create parent directories for %s: %w", record.LocalPath, err)
	}

	logger.Debug("fetching %s -> %s", record.RelativePath, record.LocalPath)

	if f.store != nil {
		return record.LocalPath, f.fromStore(ctx, record)
	}
	return record.LocalPath, service.DownloadToFile(ctx, f.client, record.URL, record.LocalPath, 0)
}

func (f *Fetcher) fromStore(ctx context.Context, record models.FileRecord) error {
	rc, err := f.store.Get(ctx, record.RelativePath)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", record.RelativePath, err)
	}
	defer utils.Close(rc)

	return utils.WriteFileAtomic(record.LocalPath+".tmp", record.LocalPath, rc)
}
