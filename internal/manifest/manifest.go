// Package manifest parses release manifests and resolves file records.
package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quarrydata/quarry/internal/errs"
	"github.com/quarrydata/quarry/internal/models"
)

// Release manifests live at <Prefix><version>/<FileName>; the version token
// is date-like and fixed-width, so lexicographic order is chronological.
const (
	Prefix   = "releases/"
	FileName = "manifest.json"
)

// IsManifestKey reports whether key follows the manifest naming convention.
func IsManifestKey(key string) bool {
	return strings.HasPrefix(key, Prefix) && strings.HasSuffix(key, "/"+FileName)
}

// KeyVersion extracts the version token from a manifest key: the path
// segment preceding the manifest file name. Empty if key does not conform.
func KeyVersion(key string) string {
	if !IsManifestKey(key) {
		return ""
	}
	return path.Base(path.Dir(key))
}

// Key builds the manifest key for a version token.
func Key(version string) string {
	return Prefix + version + "/" + FileName
}

// Document is the parsed, immutable representation of one release manifest.
type Document struct {
	Version          string                                                       `json:"version"`
	ResourceURI      string                                                       `json:"resource_uri"`
	DirectoryListing map[string]models.DirectoryEntry                             `json:"directory_listing"`
	FileListing      map[string]map[string]map[string]map[string]models.FileEntry `json:"file_listing"`

	key       string
	cacheRoot string
}

// Parse decodes manifest bytes fetched from key and binds the document to a
// cache root for local path resolution. The embedded version must match the
// version segment of the key.
func Parse(key, cacheRoot string, raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.MalformedManifest(key, err)
	}
	if doc.Version == "" || doc.Version != KeyVersion(key) {
		return nil, errs.MalformedManifest(key,
			fmt.Errorf("manifest version %q does not match key %s", doc.Version, key))
	}
	doc.key = key
	doc.cacheRoot = cacheRoot
	return &doc, nil
}

// Key returns the manifest key this document was loaded from.
func (d *Document) Key() string { return d.key }

// Directories returns the dataset directory names, sorted.
func (d *Document) Directories() []string {
	names := make([]string, 0, len(d.FileListing))
	for name := range d.FileListing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the file record for a (directory, category, logical name)
// triple. When several variant keys exist under one logical name, the
// lexicographically smallest variant key wins; the choice is deterministic.
func (d *Document) Resolve(directory string, category models.Category, name string) (models.FileRecord, error) {
	entry, err := d.lookup(directory, string(category), name)
	if err != nil {
		return models.FileRecord{}, err
	}

	return models.FileRecord{
		URL:          entry.URL,
		Version:      entry.Version,
		Size:         entry.Size,
		LocalPath:    filepath.Join(d.cacheRoot, filepath.FromSlash(entry.RelativePath)),
		RelativePath: entry.RelativePath,
		Category:     category,
		Hash:         entry.FileHash,
	}, nil
}

func (d *Document) lookup(directory, category, name string) (models.FileEntry, error) {
	categories, ok := d.FileListing[directory]
	if !ok {
		return models.FileEntry{}, errs.NotFound(directory, category, name)
	}
	names, ok := categories[category]
	if !ok {
		return models.FileEntry{}, errs.NotFound(directory, category, name)
	}
	variants, ok := names[name]
	if !ok || len(variants) == 0 {
		return models.FileEntry{}, errs.NotFound(directory, category, name)
	}

	keys := make([]string, 0, len(variants))
	for k := range variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return variants[keys[0]], nil
}
