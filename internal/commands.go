package internal

import (
	"github.com/quarrydata/quarry/internal/middleware"
	"github.com/spf13/cobra"
)

var defaultCommands = []middleware.CommandFactory{
	NewInitCmd,
	middleware.UseMiddlewareChain(middleware.RequireConfig)(NewManifestsCmd),
	middleware.UseMiddlewareChain(middleware.RequireConfig)(NewUseCmd),
	middleware.UseMiddlewareChain(middleware.RequireConfig)(NewFetchCmd),
	middleware.UseMiddlewareChain(middleware.RequireConfig)(NewStatusCmd),
}

func RegisterSubCommands(cmd *cobra.Command) {
	for _, factory := range defaultCommands {
		cmd.AddCommand(factory())
	}
}
