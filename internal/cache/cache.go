// Package cache orchestrates manifest selection and integrity-checked
// materialization of dataset files under a local cache root.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/manifest"
)

// PathResult is the outcome of a data or metadata path request: where the
// file lives locally and whether valid content is present right now.
type PathResult struct {
	LocalPath string
	Exists    bool
}

// Cache is the shared contract of the remote-backed and the local-only
// cache. Callers stay polymorphic over the full operation set.
type Cache interface {
	// ListManifests returns the sorted keys of every known manifest.
	ListManifests(ctx context.Context) ([]string, error)

	// LoadManifest binds the manifest at key and persists the selection.
	// key must be a member of ListManifests.
	LoadManifest(ctx context.Context, key string) error

	// LoadLatestManifest binds the most recent known manifest.
	LoadLatestManifest(ctx context.Context) error

	// LoadLastManifest restores the manifest recorded by the previous
	// session, falling back to the latest when no usable record exists.
	LoadLastManifest(ctx context.Context) error

	// DataPath resolves and materializes a data file.
	DataPath(ctx context.Context, directory, name string) (PathResult, error)

	// MetadataPath resolves and materializes a metadata file.
	MetadataPath(ctx context.Context, directory, name string) (PathResult, error)

	// CurrentManifestKey is the bound manifest key, "" when unbound.
	CurrentManifestKey() string

	// Version is the version token of the bound manifest, "" when unbound.
	Version() string

	// Document exposes the bound manifest, nil when unbound.
	Document() *manifest.Document

	// LatestManifestKey is the maximum of ListManifests.
	LatestManifestKey(ctx context.Context) (string, error)

	// LatestDownloadedManifestKey is the maximum over manifests with a
	// local copy under the cache root, "" when none.
	LatestDownloadedManifestKey() (string, error)

	// ListDownloadedManifests returns the sorted keys of every manifest
	// with a local copy under the cache root.
	ListDownloadedManifests() ([]string, error)
}

// localManifestPath is where a loaded manifest's local copy lives; the
// on-disk layout under the cache root mirrors the remote key layout.
func localManifestPath(cacheRoot, key string) string {
	return filepath.Join(cacheRoot, filepath.FromSlash(key))
}

// downloadedManifests scans the cache root for local manifest copies and
// returns their keys, sorted ascending.
func downloadedManifests(cacheRoot string) ([]string, error) {
	pattern := filepath.Join(cacheRoot, filepath.FromSlash(manifest.Prefix), "*", manifest.FileName)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan cache root %s: %w", cacheRoot, err)
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		version := filepath.Base(filepath.Dir(m))
		keys = append(keys, manifest.Key(version))
	}
	sort.Strings(keys)
	return keys, nil
}

func latestDownloaded(cacheRoot string) (string, error) {
	keys, err := downloadedManifests(cacheRoot)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[len(keys)-1], nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// loadLatest implements the shared LoadLatestManifest protocol: warn when an
// earlier release is already on disk, then bind the latest manifest.
func loadLatest(ctx context.Context, c Cache, warn WarningSink) error {
	keys, err := c.ListManifests(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no manifests found")
	}
	latest := keys[len(keys)-1]

	prior, err := c.LatestDownloadedManifestKey()
	if err != nil {
		return err
	}
	if prior != "" && prior != latest {
		warn(earlierVersionOnDisk(latest, prior))
	}

	return c.LoadManifest(ctx, latest)
}

// loadLast implements the shared LoadLastManifest resolution protocol
// combining the persisted record with the currently known manifest set.
func loadLast(ctx context.Context, c Cache, last string, warn WarningSink) error {
	if last == "" {
		// First-ever use of this cache root; no warning.
		return c.LoadLatestManifest(ctx)
	}

	keys, err := c.ListManifests(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no manifests found")
	}
	latest := keys[len(keys)-1]

	if !contains(keys, last) {
		// Stale or corrupted record; recover by loading the latest.
		warn(lastRecordInvalid(latest, last))
		return c.LoadLatestManifest(ctx)
	}

	return c.LoadManifest(ctx, last)
}

// DefaultWarningSink routes advisories to the logger.
func DefaultWarningSink(w Warning) {
	logger.Warn("%s", w.Message)
}

var (
	_ Cache = (*RemoteCache)(nil)
	_ Cache = (*LocalCache)(nil)
)
