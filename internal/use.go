package internal

import (
	"fmt"

	"github.com/quarrydata/quarry/internal/logger"

	"github.com/spf13/cobra"
)

func NewUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use [manifest-key]",
		Short: "Select the dataset release to work with",
		Long: `Select the dataset release to work with.
Pass a manifest key (releases/<version>/manifest.json), or use --latest for
the most recent release, or --last to restore the previous session's choice.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, _ := cmd.Flags().GetBool("latest")
			last, _ := cmd.Flags().GetBool("last")

			if len(args) == 0 && !latest && !last {
				return fmt.Errorf("provide a manifest key, or use --latest or --last")
			}
			if len(args) == 1 && (latest || last) {
				return fmt.Errorf("a manifest key cannot be combined with --latest or --last")
			}
			if latest && last {
				return fmt.Errorf("--latest and --last are mutually exclusive")
			}

			c, err := buildCache(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch {
			case latest:
				err = c.LoadLatestManifest(ctx)
			case last:
				err = c.LoadLastManifest(ctx)
			default:
				err = c.LoadManifest(ctx, args[0])
			}
			if err != nil {
				return err
			}

			logger.Success("Using %s (version %s)", c.CurrentManifestKey(), c.Version())
			return nil
		},
	}

	cmd.Flags().Bool("latest", false, "Load the most recent release")
	cmd.Flags().Bool("last", false, "Restore the release from the previous session")
	cmd.Flags().Bool("local", false, "Select among already-downloaded releases only")
	return cmd
}
