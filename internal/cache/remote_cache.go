package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quarrydata/quarry/internal/errs"
	"github.com/quarrydata/quarry/internal/fetcher"
	"github.com/quarrydata/quarry/internal/integrity"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/manifest"
	"github.com/quarrydata/quarry/internal/models"
	"github.com/quarrydata/quarry/internal/registry"
	"github.com/quarrydata/quarry/internal/remote"
	"github.com/quarrydata/quarry/internal/state"
	"github.com/quarrydata/quarry/internal/utils"
)

// RemoteCache is the object-store-backed Cache: manifests are discovered in
// the bucket, files are downloaded on demand and verified against their
// published checksums.
type RemoteCache struct {
	cacheRoot string
	store     remote.Store
	registry  *registry.Registry
	fetcher   *fetcher.Fetcher
	checker   *integrity.Checker
	state     *state.State
	warn      WarningSink

	current        *manifest.Document
	outdatedWarned bool
}

// NewRemoteCache builds a cache rooted at cacheRoot and backed by store.
// f and warn may be nil; the defaults fetch through the store and log
// advisories through the logger.
func NewRemoteCache(cacheRoot string, store remote.Store, f *fetcher.Fetcher, warn WarningSink) (*RemoteCache, error) {
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root %s: %w", cacheRoot, err)
	}

	checker := integrity.New()
	if f == nil {
		f = fetcher.NewStoreFetcher(store, checker)
	}
	if warn == nil {
		warn = DefaultWarningSink
	}

	return &RemoteCache{
		cacheRoot: cacheRoot,
		store:     store,
		registry:  registry.New(store),
		fetcher:   f,
		checker:   checker,
		state:     state.New(cacheRoot),
		warn:      warn,
	}, nil
}

// CacheRoot returns the local directory this cache materializes into.
func (c *RemoteCache) CacheRoot() string { return c.cacheRoot }

func (c *RemoteCache) ListManifests(ctx context.Context) ([]string, error) {
	return c.registry.ListManifestKeys(ctx)
}

// LoadManifest fetches, parses and binds the manifest at key, stores a local
// copy beside the data files and records the selection for the next session.
// Nothing is mutated when key is unknown or the document fails to parse.
func (c *RemoteCache) LoadManifest(ctx context.Context, key string) error {
	keys, err := c.ListManifests(ctx)
	if err != nil {
		return err
	}
	if !contains(keys, key) {
		return errs.InvalidManifestKey(key)
	}
	latest := keys[len(keys)-1]

	raw, err := c.fetchManifestBytes(ctx, key)
	if err != nil {
		return err
	}

	doc, err := manifest.Parse(key, c.cacheRoot, raw)
	if err != nil {
		return err
	}

	if err := c.saveLocalCopy(key, raw); err != nil {
		return err
	}

	c.current = doc
	if err := c.state.Write(key); err != nil {
		return fmt.Errorf("record last-used manifest: %w", err)
	}

	logger.Debug("loaded manifest %s", key)

	if key != latest && !c.outdatedWarned {
		c.outdatedWarned = true
		c.warn(outdatedManifest(key, latest))
	}
	return nil
}

func (c *RemoteCache) LoadLatestManifest(ctx context.Context) error {
	return loadLatest(ctx, c, c.warn)
}

// LoadLastManifest reloads the manifest recorded by the previous session.
// An absent record means first use (load latest, silently); an unknown
// record recovers to the latest with an advisory; a valid but stale record
// loads normally and triggers the standard outdated-manifest warning.
func (c *RemoteCache) LoadLastManifest(ctx context.Context) error {
	return loadLast(ctx, c, c.state.Read(), c.warn)
}

func (c *RemoteCache) DataPath(ctx context.Context, directory, name string) (PathResult, error) {
	return c.pathFor(ctx, directory, models.CategoryData, name)
}

func (c *RemoteCache) MetadataPath(ctx context.Context, directory, name string) (PathResult, error) {
	return c.pathFor(ctx, directory, models.CategoryMetadata, name)
}

func (c *RemoteCache) CurrentManifestKey() string {
	if c.current == nil {
		return ""
	}
	return c.current.Key()
}

func (c *RemoteCache) Version() string {
	if c.current == nil {
		return ""
	}
	return c.current.Version
}

func (c *RemoteCache) Document() *manifest.Document { return c.current }

func (c *RemoteCache) LatestManifestKey(ctx context.Context) (string, error) {
	keys, err := c.ListManifests(ctx)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[len(keys)-1], nil
}

func (c *RemoteCache) LatestDownloadedManifestKey() (string, error) {
	return latestDownloaded(c.cacheRoot)
}

func (c *RemoteCache) ListDownloadedManifests() ([]string, error) {
	return downloadedManifests(c.cacheRoot)
}

// --- internals ---

func (c *RemoteCache) pathFor(ctx context.Context, directory string, category models.Category, name string) (PathResult, error) {
	if c.current == nil {
		return PathResult{}, errs.NoManifestLoaded(string(category) + " path")
	}

	record, err := c.current.Resolve(directory, category, name)
	if err != nil {
		return PathResult{}, err
	}

	if _, err := c.fetcher.Materialize(ctx, record); err != nil {
		return PathResult{LocalPath: record.LocalPath}, err
	}

	// Verify right away so the caller gets a trustworthy answer.
	ok, err := c.checker.Exists(record)
	if err != nil {
		return PathResult{LocalPath: record.LocalPath}, err
	}
	return PathResult{LocalPath: record.LocalPath, Exists: ok}, nil
}

func (c *RemoteCache) fetchManifestBytes(ctx context.Context, key string) ([]byte, error) {
	rc, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest %s: %w", key, err)
	}
	defer utils.Close(rc)

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", key, err)
	}
	return raw, nil
}

func (c *RemoteCache) saveLocalCopy(key string, raw []byte) error {
	dst := localManifestPath(c.cacheRoot, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return fmt.Errorf("save manifest copy %s: %w", dst, err)
	}
	return nil
}
