package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print freshness statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	addConfigFlag(statsCmd)
	statsCmd.Flags().String("tenant", "", "Restrict the statistics to one tenant")
}

func runStats(cmd *cobra.Command, _ []string) error {
	tenantID, err := cmd.Flags().GetString("tenant")
	if err != nil {
		return fmt.Errorf("failed to get tenant flag: %w", err)
	}

	return withComponents(cmd.Context(), cmd, func(ctx context.Context, components *vrsyncapp.AppComponents) error {
		s, err := components.SyncService.GetStats(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), s)
	})
}
