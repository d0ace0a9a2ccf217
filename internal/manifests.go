package internal

import (
	"github.com/quarrydata/quarry/internal/lister"

	"github.com/spf13/cobra"
)

func NewManifestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifests",
		Short: "List dataset release manifests and their cache state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := buildCache(cmd)
			if err != nil {
				return err
			}

			downloadedOnly, err := cmd.Flags().GetBool("downloaded")
			if err != nil {
				return err
			}

			return lister.New(c).Execute(cmd.Context(), downloadedOnly)
		},
	}

	cmd.Flags().Bool("local", false, "List only what is already on disk; no remote access")
	cmd.Flags().BoolP("downloaded", "d", false, "Show only manifests with local copies")
	return cmd
}
