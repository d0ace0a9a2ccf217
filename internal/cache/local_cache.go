package cache

import (
	"context"
	"fmt"
	"os"

	"github.com/quarrydata/quarry/internal/errs"
	"github.com/quarrydata/quarry/internal/integrity"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/manifest"
	"github.com/quarrydata/quarry/internal/models"
	"github.com/quarrydata/quarry/internal/state"
)

// LocalCache is the read-only Cache over a cache root previously populated
// by a RemoteCache. It never touches the network: manifests are the local
// copies on disk, and path requests only report what is already present.
type LocalCache struct {
	cacheRoot string
	checker   *integrity.Checker
	state     *state.State
	warn      WarningSink

	current        *manifest.Document
	outdatedWarned bool
}

// NewLocalCache opens cacheRoot read-only. warn may be nil.
func NewLocalCache(cacheRoot string, warn WarningSink) (*LocalCache, error) {
	info, err := os.Stat(cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("open cache root %s: %w", cacheRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cache root %s is not a directory", cacheRoot)
	}
	if warn == nil {
		warn = DefaultWarningSink
	}

	return &LocalCache{
		cacheRoot: cacheRoot,
		checker:   integrity.New(),
		state:     state.New(cacheRoot),
		warn:      warn,
	}, nil
}

// CacheRoot returns the local directory this cache reads from.
func (c *LocalCache) CacheRoot() string { return c.cacheRoot }

// ListManifests enumerates the manifests whose copies exist on disk.
func (c *LocalCache) ListManifests(_ context.Context) ([]string, error) {
	return downloadedManifests(c.cacheRoot)
}

// LoadManifest binds a locally present manifest. "Latest" here means the
// most recent manifest on disk, so staleness warnings are relative to what
// this cache root has seen, not to the remote store.
func (c *LocalCache) LoadManifest(ctx context.Context, key string) error {
	keys, err := c.ListManifests(ctx)
	if err != nil {
		return err
	}
	if !contains(keys, key) {
		return errs.InvalidManifestKey(key)
	}
	latest := keys[len(keys)-1]

	raw, err := os.ReadFile(localManifestPath(c.cacheRoot, key))
	if err != nil {
		return fmt.Errorf("read local manifest %s: %w", key, err)
	}

	doc, err := manifest.Parse(key, c.cacheRoot, raw)
	if err != nil {
		return err
	}

	c.current = doc
	if err := c.state.Write(key); err != nil {
		return fmt.Errorf("record last-used manifest: %w", err)
	}

	logger.Debug("loaded local manifest %s", key)

	if key != latest && !c.outdatedWarned {
		c.outdatedWarned = true
		c.warn(outdatedManifest(key, latest))
	}
	return nil
}

func (c *LocalCache) LoadLatestManifest(ctx context.Context) error {
	return loadLatest(ctx, c, c.warn)
}

func (c *LocalCache) LoadLastManifest(ctx context.Context) error {
	return loadLast(ctx, c, c.state.Read(), c.warn)
}

// DataPath reports where a data file lives and whether valid content is
// already on disk. No download is ever attempted.
func (c *LocalCache) DataPath(_ context.Context, directory, name string) (PathResult, error) {
	return c.pathFor(directory, models.CategoryData, name)
}

// MetadataPath is DataPath for the metadata category.
func (c *LocalCache) MetadataPath(_ context.Context, directory, name string) (PathResult, error) {
	return c.pathFor(directory, models.CategoryMetadata, name)
}

func (c *LocalCache) CurrentManifestKey() string {
	if c.current == nil {
		return ""
	}
	return c.current.Key()
}

func (c *LocalCache) Version() string {
	if c.current == nil {
		return ""
	}
	return c.current.Version
}

func (c *LocalCache) Document() *manifest.Document { return c.current }

func (c *LocalCache) LatestManifestKey(ctx context.Context) (string, error) {
	keys, err := c.ListManifests(ctx)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[len(keys)-1], nil
}

func (c *LocalCache) LatestDownloadedManifestKey() (string, error) {
	return latestDownloaded(c.cacheRoot)
}

func (c *LocalCache) ListDownloadedManifests() ([]string, error) {
	return downloadedManifests(c.cacheRoot)
}

func (c *LocalCache) pathFor(directory string, category models.Category, name string) (PathResult, error) {
	if c.current == nil {
		return PathResult{}, errs.NoManifestLoaded(string(category) + " path")
	}

	record, err := c.current.Resolve(directory, category, name)
	if err != nil {
		return PathResult{}, err
	}

	ok, err := c.checker.Exists(record)
	if err != nil {
		return PathResult{LocalPath: record.LocalPath}, err
	}
	return PathResult{LocalPath: record.LocalPath, Exists: ok}, nil
}
