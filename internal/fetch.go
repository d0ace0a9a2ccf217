package internal

import (
	"fmt"

	"github.com/quarrydata/quarry/internal/logger"

	"github.com/spf13/cobra"
)

func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <directory> <name>",
		Short: "Materialize a dataset file and print its local path",
		Long: `Materialize one file of the selected release and print its local path.
The file is downloaded only if it is missing or fails its checksum; a valid
cached copy is reused without touching the network.`,
		Example: `  quarry fetch my_directory expression_matrix
  quarry fetch my_directory gene_metadata --metadata`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCache(cmd)
			if err != nil {
				return err
			}

			if err := c.LoadLastManifest(cmd.Context()); err != nil {
				return err
			}

			meta, _ := cmd.Flags().GetBool("metadata")

			pathFn := c.DataPath
			if meta {
				pathFn = c.MetadataPath
			}

			res, err := pathFn(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if !res.Exists {
				return fmt.Errorf("%s is not present or failed verification", res.LocalPath)
			}

			logger.Success("Verified %s", res.LocalPath)
			fmt.Fprintln(cmd.OutOrStdout(), res.LocalPath)
			return nil
		},
	}

	cmd.Flags().Bool("metadata", false, "Fetch from the metadata category instead of data")
	cmd.Flags().Bool("http", false, "Download over public HTTPS URLs instead of the S3 API")
	cmd.Flags().Bool("local", false, "Only check what is on disk; never download")
	return cmd
}
