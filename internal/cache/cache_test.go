package cache

import (
	"context"
	"crypto/md5" // #nosec G401 -- mirrors the published checksum algorithm
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/quarrydata/quarry/internal/errs"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/manifest"
	"github.com/quarrydata/quarry/internal/remote"
	"github.com/quarrydata/quarry/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

func md5hex(b []byte) string {
	sum := md5.Sum(b) // #nosec G401
	return hex.EncodeToString(sum[:])
}

func dataContent(version string) []byte {
	return []byte("expression matrix payload " + version)
}

func metaContent(version string) []byte {
	return []byte("gene metadata payload " + version)
}

func dataRel(version string) string {
	return "expression_matrices/my_directory/" + version + "/expression_matrix.h5ad"
}

func metaRel(version string) string {
	return "metadata/my_directory/" + version + "/gene_metadata.csv"
}

func manifestBody(t *testing.T, version string) []byte {
	t.Helper()

	entry := func(rel string, body []byte) map[string]any {
		return map[string]any{
			"version":       version,
			"relative_path": rel,
			"url":           "https://test-bucket.s3.amazonaws.com/" + rel,
			"size":          len(body),
			"file_hash":     md5hex(body),
		}
	}

	doc := map[string]any{
		"version":      version,
		"resource_uri": "s3://test-bucket/",
		"directory_listing": map[string]any{
			"my_directory": map[string]any{
				"directories": map[string]any{
					"data": map[string]any{
						"version":       version,
						"relative_path": "expression_matrices/my_directory/" + version,
						"url":           "https://test-bucket.s3.amazonaws.com/expression_matrices/my_directory/" + version + "/",
						"total_size":    len(dataContent(version)),
					},
					"metadata": map[string]any{
						"version":       version,
						"relative_path": "metadata/my_directory/" + version,
						"url":           "https://test-bucket.s3.amazonaws.com/metadata/my_directory/" + version + "/",
						"total_size":    len(metaContent(version)),
					},
				},
			},
		},
		"file_listing": map[string]any{
			"my_directory": map[string]any{
				"data": map[string]any{
					"expression_matrix": map[string]any{
						"h5ad": entry(dataRel(version), dataContent(version)),
					},
				},
				"metadata": map[string]any{
					"gene_metadata": map[string]any{
						"csv": entry(metaRel(version), metaContent(version)),
					},
				},
			},
		},
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

// seedStore publishes one release per version: the manifest plus the data
// and metadata files it describes.
func seedStore(t *testing.T, versions ...string) *remote.MockStore {
	t.Helper()
	store := remote.NewMockStore(0)
	for _, v := range versions {
		store.Put(manifest.Key(v), manifestBody(t, v))
		store.Put(dataRel(v), dataContent(v))
		store.Put(metaRel(v), metaContent(v))
	}
	store.Put("junk.txt", []byte("junk"))
	return store
}

type warningLog struct {
	warnings []Warning
}

func (l *warningLog) sink(w Warning) { l.warnings = append(l.warnings, w) }

func (l *warningLog) ofKind(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range l.warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func newTestCache(t *testing.T, store *remote.MockStore) (*RemoteCache, *warningLog) {
	t.Helper()
	log := &warningLog{}
	c, err := NewRemoteCache(t.TempDir(), store, nil, log.sink)
	require.NoError(t, err)
	return c, log
}

func TestListManifests(t *testing.T) {
	store := seedStore(t, "20240831", "20230101", "20240101")
	c, _ := newTestCache(t, store)

	keys, err := c.ListManifests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		manifest.Key("20230101"),
		manifest.Key("20240101"),
		manifest.Key("20240831"),
	}, keys)
}

func TestLoadManifest_BindsAndPersists(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	c, log := newTestCache(t, store)

	key := manifest.Key("20240831")
	require.NoError(t, c.LoadManifest(context.Background(), key))

	assert.Equal(t, key, c.CurrentManifestKey())
	assert.Equal(t, "20240831", c.Version())
	require.NotNil(t, c.Document())
	assert.Empty(t, log.warnings)

	// The loaded manifest leaves a local copy behind and records itself
	// for the next session.
	_, err := os.Stat(localManifestPath(c.CacheRoot(), key))
	assert.NoError(t, err)
	assert.Equal(t, key, state.New(c.CacheRoot()).Read())
}

func TestLoadManifest_UnknownKey(t *testing.T) {
	store := seedStore(t, "20230101", "20240101")
	c, log := newTestCache(t, store)

	err := c.LoadManifest(context.Background(), manifest.Key("19990101"))
	assert.ErrorIs(t, err, errs.ErrInvalidManifestKey)

	// Nothing binds on failure.
	assert.Equal(t, "", c.CurrentManifestKey())
	assert.Equal(t, "", state.New(c.CacheRoot()).Read())
	assert.Empty(t, log.warnings)
}

func TestLoadManifest_OutdatedWarnsOnce(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	c, log := newTestCache(t, store)

	old := manifest.Key("20230101")
	require.NoError(t, c.LoadManifest(context.Background(), old))
	require.NoError(t, c.LoadManifest(context.Background(), old))
	require.NoError(t, c.LoadManifest(context.Background(), manifest.Key("20240101")))

	warns := log.ofKind(WarnOutdatedManifest)
	require.Len(t, warns, 1)
	assert.Equal(t, old, warns[0].Loaded)
	assert.Equal(t, manifest.Key("20240831"), warns[0].Latest)
	assert.Contains(t, warns[0].Message, "is not the most up to date")
	assert.Contains(t, warns[0].Message,
		fmt.Sprintf("A more up to date version of the dataset -- %s -- exists online", manifest.Key("20240831")))
}

func TestLoadManifest_LatestIsSilent(t *testing.T) {
	store := seedStore(t, "20230101", "20240831")
	c, log := newTestCache(t, store)

	require.NoError(t, c.LoadManifest(context.Background(), manifest.Key("20240831")))
	assert.Empty(t, log.warnings)
}

func TestDataPath_MaterializesAndVerifies(t *testing.T) {
	store := seedStore(t, "20240831")
	c, _ := newTestCache(t, store)
	require.NoError(t, c.LoadLatestManifest(context.Background()))

	res, err := c.DataPath(context.Background(), "my_directory", "expression_matrix")
	require.NoError(t, err)
	assert.True(t, res.Exists)

	got, err := os.ReadFile(res.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, dataContent("20240831"), got)
}

func TestDataPath_SecondCallHitsDisk(t *testing.T) {
	store := seedStore(t, "20240831")
	c, _ := newTestCache(t, store)
	require.NoError(t, c.LoadLatestManifest(context.Background()))

	for i := 0; i < 3; i++ {
		res, err := c.DataPath(context.Background(), "my_directory", "expression_matrix")
		require.NoError(t, err)
		assert.True(t, res.Exists)
	}
	assert.Equal(t, 1, store.GetCalls[dataRel("20240831")])
}

func TestMetadataPath(t *testing.T) {
	store := seedStore(t, "20240831")
	c, _ := newTestCache(t, store)
	require.NoError(t, c.LoadLatestManifest(context.Background()))

	res, err := c.MetadataPath(context.Background(), "my_directory", "gene_metadata")
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.True(t, strings.HasSuffix(res.LocalPath, "gene_metadata.csv"))

	got, err := os.ReadFile(res.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, metaContent("20240831"), got)
}

func TestPaths_RequireManifest(t *testing.T) {
	store := seedStore(t, "20240831")
	c, _ := newTestCache(t, store)

	_, err := c.DataPath(context.Background(), "my_directory", "expression_matrix")
	assert.ErrorIs(t, err, errs.ErrNoManifestLoaded)

	_, err = c.MetadataPath(context.Background(), "my_directory", "gene_metadata")
	assert.ErrorIs(t, err, errs.ErrNoManifestLoaded)
}

func TestPaths_UnknownFile(t *testing.T) {
	store := seedStore(t, "20240831")
	c, _ := newTestCache(t, store)
	require.NoError(t, c.LoadLatestManifest(context.Background()))

	_, err := c.DataPath(context.Background(), "my_directory", "no_such_file")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDownloadedManifests_TrackLoads(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	c, _ := newTestCache(t, store)
	ctx := context.Background()

	got, err := c.ListDownloadedManifests()
	require.NoError(t, err)
	assert.Empty(t, got)

	// Load out of order; enumeration comes back sorted and the latest
	// downloaded is independent of load order.
	require.NoError(t, c.LoadManifest(ctx, manifest.Key("20240831")))
	require.NoError(t, c.LoadManifest(ctx, manifest.Key("20230101")))
	require.NoError(t, c.LoadManifest(ctx, manifest.Key("20240101")))

	got, err = c.ListDownloadedManifests()
	require.NoError(t, err)
	assert.Equal(t, []string{
		manifest.Key("20230101"),
		manifest.Key("20240101"),
		manifest.Key("20240831"),
	}, got)

	latest, err := c.LatestDownloadedManifestKey()
	require.NoError(t, err)
	assert.Equal(t, manifest.Key("20240831"), latest)
}

func TestLatestManifestKey(t *testing.T) {
	store := seedStore(t, "20230101", "20240831", "20240101")
	c, _ := newTestCache(t, store)

	latest, err := c.LatestManifestKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, manifest.Key("20240831"), latest)
}

func TestLoadLatestManifest(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	c, log := newTestCache(t, store)

	require.NoError(t, c.LoadLatestManifest(context.Background()))
	assert.Equal(t, manifest.Key("20240831"), c.CurrentManifestKey())
	assert.Empty(t, log.warnings)
}

func TestLoadLatestManifest_EarlierVersionOnDisk(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	cacheRoot := t.TempDir()
	ctx := context.Background()

	first, err := NewRemoteCache(cacheRoot, store, nil, func(Warning) {})
	require.NoError(t, err)
	require.NoError(t, first.LoadManifest(ctx, manifest.Key("20230101")))

	// A fresh instance over the same root notices the older release.
	log := &warningLog{}
	second, err := NewRemoteCache(cacheRoot, store, nil, log.sink)
	require.NoError(t, err)
	require.NoError(t, second.LoadLatestManifest(ctx))

	assert.Equal(t, manifest.Key("20240831"), second.CurrentManifestKey())
	warns := log.ofKind(WarnEarlierVersionOnDisk)
	require.Len(t, warns, 1)
	assert.Equal(t, manifest.Key("20240831"), warns[0].Latest)
	assert.Contains(t, warns[0].Message, manifest.Key("20230101"))
}

func TestLoadLatestManifest_NoWarningWhenCurrent(t *testing.T) {
	store := seedStore(t, "20230101", "20240831")
	cacheRoot := t.TempDir()
	ctx := context.Background()

	first, err := NewRemoteCache(cacheRoot, store, nil, func(Warning) {})
	require.NoError(t, err)
	require.NoError(t, first.LoadLatestManifest(ctx))

	log := &warningLog{}
	second, err := NewRemoteCache(cacheRoot, store, nil, log.sink)
	require.NoError(t, err)
	require.NoError(t, second.LoadLatestManifest(ctx))
	assert.Empty(t, log.warnings)
}

func TestLoadLastManifest_FirstUse(t *testing.T) {
	store := seedStore(t, "20230101", "20240831")
	c, log := newTestCache(t, store)

	require.NoError(t, c.LoadLastManifest(context.Background()))
	assert.Equal(t, manifest.Key("20240831"), c.CurrentManifestKey())
	assert.Empty(t, log.warnings)
}

func TestLoadLastManifest_RestoresSelection(t *testing.T) {
	store := seedStore(t, "20230101", "20240101", "20240831")
	cacheRoot := t.TempDir()
	ctx := context.Background()

	first, err := NewRemoteCache(cacheRoot, store, nil, func(Warning) {})
	require.NoError(t, err)
	require.NoError(t, first.LoadManifest(ctx, manifest.Key("20240101")))

	log := &warningLog{}
	second, err := NewRemoteCache(cacheRoot, store, nil, log.sink)
	require.NoError(t, err)
	require.NoError(t, second.LoadLastManifest(ctx))

	// The stale selection is honored and the standard staleness advisory
	// fires once.
	assert.Equal(t, manifest.Key("20240101"), second.CurrentManifestKey())
	assert.Len(t, log.ofKind(WarnOutdatedManifest), 1)
}

func TestLoadLastManifest_CorruptRecord(t *testing.T) {
	store := seedStore(t, "20230101", "20240831")
	c, log := newTestCache(t, store)

	require.NoError(t, state.New(c.CacheRoot()).Write("babababa"))
	require.NoError(t, c.LoadLastManifest(context.Background()))

	assert.Equal(t, manifest.Key("20240831"), c.CurrentManifestKey())
	warns := log.ofKind(WarnLastRecordInvalid)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "Loading latest version -- "+manifest.Key("20240831"))
}

func TestLoadManifest_MalformedBody(t *testing.T) {
	store := seedStore(t, "20240831")
	store.Put(manifest.Key("20240831"), []byte("babababa"))
	c, _ := newTestCache(t, store)

	err := c.LoadManifest(context.Background(), manifest.Key("20240831"))
	assert.ErrorIs(t, err, errs.ErrMalformedManifest)
	assert.Equal(t, "", c.CurrentManifestKey())
}
