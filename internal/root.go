package internal

import (
	"github.com/quarrydata/quarry/internal/logger"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarry",
		Short: "Local cache for versioned datasets published in object storage",
		Long: `Quarry keeps a local, integrity-checked cache of versioned datasets
published as manifest-described file trees in an S3 bucket. It discovers
release manifests, downloads files on demand, verifies them against their
published checksums and warns you before you silently work against an
outdated release.`,
		Example: `  quarry use --latest
  quarry fetch my_directory expression_matrix`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.FlagVerbose, _ = cmd.Flags().GetBool("verbose")
			logger.FlagQuiet, _ = cmd.Flags().GetBool("quiet")
			logger.FlagJSON, _ = cmd.Flags().GetBool("json")
			logger.ConfigureLoggerFromFlags()
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().Bool("json", false, "JSON log output (CI)")

	RegisterSubCommands(cmd)

	return cmd
}

func Execute() error {
	root := NewRootCmd()

	if err := root.Execute(); err != nil {
		logger.Debug("Failed to execute root command: %v", err)
		return err
	}
	return nil
}
