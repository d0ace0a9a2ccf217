package middleware

import (
	"context"
	"fmt"

	"github.com/quarrydata/quarry/internal/globalconfig"
	"github.com/spf13/cobra"
)

// RequireConfig loads the persistent configuration and injects it into the
// command context for the command body to pick up via Get.
func RequireConfig(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	cfg, err := globalconfig.LoadPersistentConfig()
	if err != nil {
		return fmt.Errorf("missing config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, CtxKeyConfig, cfg))

	return next(cmd, args)
}
