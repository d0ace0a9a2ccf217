package internal

import (
	"fmt"

	"github.com/quarrydata/quarry/internal/logger"

	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the selected, latest and downloaded releases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := buildCache(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			keys, err := c.ListManifests(ctx)
			if err != nil {
				return err
			}
			latest := ""
			if len(keys) > 0 {
				latest = keys[len(keys)-1]
			}

			downloaded, err := c.ListDownloadedManifests()
			if err != nil {
				return err
			}
			latestDownloaded, err := c.LatestDownloadedManifestKey()
			if err != nil {
				return err
			}

			// Restoring the persisted selection also surfaces any
			// staleness warnings.
			if len(downloaded) > 0 {
				if err := c.LoadLastManifest(ctx); err != nil {
					logger.Debug("could not restore last manifest: %v", err)
				}
			}

			fmt.Fprintf(out, "Selected:          %s\n", orNone(c.CurrentManifestKey()))
			fmt.Fprintf(out, "Latest:            %s\n", orNone(latest))
			fmt.Fprintf(out, "Latest downloaded: %s\n", orNone(latestDownloaded))
			fmt.Fprintf(out, "Downloaded:        %d of %d known releases\n", len(downloaded), len(keys))
			return nil
		},
	}

	cmd.Flags().Bool("local", false, "Inspect the cache directory only; no remote access")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
