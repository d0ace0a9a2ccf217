package internal

import (
	"time"

	"github.com/quarrydata/quarry/internal/cache"
	"github.com/quarrydata/quarry/internal/fetcher"
	"github.com/quarrydata/quarry/internal/globalconfig"
	"github.com/quarrydata/quarry/internal/middleware"
	"github.com/quarrydata/quarry/internal/remote"
	"github.com/quarrydata/quarry/internal/service"
	"github.com/spf13/cobra"
)

// buildCache assembles the cache a command operates on. --local opens the
// cache root read-only with no remote access at all; --http downloads data
// files over their public HTTPS URLs instead of the S3 API.
func buildCache(cmd *cobra.Command) (cache.Cache, error) {
	cfg, err := middleware.Get[*globalconfig.PersistentConfig](cmd, middleware.CtxKeyConfig)
	if err != nil {
		return nil, err
	}

	if local, _ := cmd.Flags().GetBool("local"); local {
		return cache.NewLocalCache(cfg.CacheDir, nil)
	}

	store, err := remote.NewS3Store(cmd.Context(), remote.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	var f *fetcher.Fetcher
	if httpMode, _ := cmd.Flags().GetBool("http"); httpMode {
		f = fetcher.NewHTTPFetcher(service.NewHTTPClient(5*time.Minute), nil)
	}

	return cache.NewRemoteCache(cfg.CacheDir, store, f, nil)
}
