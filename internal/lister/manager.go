// Package lister renders manifest listings for the CLI.
package lister

import (
	"context"
	"fmt"

	"github.com/quarrydata/quarry/internal/cache"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/manifest"
	"github.com/quarrydata/quarry/internal/printer"
)

// row is a view model for rendering.
type row struct {
	Key     string
	Version string
	State   string
}

type Lister struct {
	cache cache.Cache
}

func New(c cache.Cache) *Lister {
	return &Lister{cache: c}
}

// Execute renders the manifest table.
//   - downloadedOnly=false => every known manifest
//   - downloadedOnly=true  => only manifests with a local copy
func (l *Lister) Execute(ctx context.Context, downloadedOnly bool) error {
	keys, err := l.cache.ListManifests(ctx)
	if err != nil {
		return fmt.Errorf("an error occurred while listing manifests: %w", err)
	}

	downloaded, err := l.cache.ListDownloadedManifests()
	if err != nil {
		return err
	}
	onDisk := make(map[string]bool, len(downloaded))
	for _, k := range downloaded {
		onDisk[k] = true
	}

	latest := ""
	if len(keys) > 0 {
		latest = keys[len(keys)-1]
	}
	current := l.cache.CurrentManifestKey()
	if current == "" {
		// Show which release a bare `use --last` would pick up.
		if lastUsed, err := l.cache.LatestDownloadedManifestKey(); err == nil {
			current = lastUsed
		}
	}

	p := printer.NewColorPrinter()
	table := logger.CreateTable([]string{"Manifest", "Version", "State"})

	rows := make([]row, 0, len(keys))
	for _, key := range keys {
		if downloadedOnly && !onDisk[key] {
			continue
		}

		state := "remote"
		switch {
		case key == latest && onDisk[key]:
			state = p.Success("latest, downloaded")
		case key == latest:
			state = p.Info("latest")
		case onDisk[key]:
			state = p.Success("downloaded")
		}
		if key == current {
			state += p.Warning(" *")
		}

		rows = append(rows, row{
			Key:     key,
			Version: manifest.KeyVersion(key),
			State:   state,
		})
	}

	for _, r := range rows {
		if err := table.Append([]string{r.Key, r.Version, r.State}); err != nil {
			return err
		}
	}
	return table.Render()
}
