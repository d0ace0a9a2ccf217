package internal

import (
	"github.com/quarrydata/quarry/internal/setup"

	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Configure the dataset bucket and cache directory",
		Long: `Configure quarry.
This command will:
- Ask for the S3 bucket holding the dataset releases
- Ask where downloaded files should be cached
- Save the answers to ~/.config/quarry/config.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setup.New(cmd.InOrStdin(), cmd.OutOrStdout()).Execute()
		},
	}
}
