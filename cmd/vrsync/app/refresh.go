package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh <vehicle-id>",
	Short: "Refresh one vehicle and print the result",
	Long: `Look up one vehicle in the registry immediately, store the result and print
it as JSON. The command exits non-zero when the refresh fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	addConfigFlag(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	vehicleID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid vehicle id %q: %w", args[0], err)
	}

	return withComponents(cmd.Context(), cmd, func(ctx context.Context, components *vrsyncapp.AppComponents) error {
		result := components.SyncService.RefreshVehicle(ctx, vehicleID)
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("refresh of vehicle %s failed: %s", vehicleID, result.Error)
		}
		return nil
	})
}
