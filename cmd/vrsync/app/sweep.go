package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
	pkgsync "github.com/mydv/vrsync/internal/sync"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one sweep and print its report",
	Long: `Run one sweep against the registry and print the report as JSON.

An interrupt stops the sweep after the current vehicle; the partial report is
still printed.

Examples:
  # Refresh every stale vehicle of one tenant
  vrsync sweep --config config.yaml --tenant dealer-1

  # Refresh every eligible vehicle in groups of 10
  vrsync sweep --config config.yaml --force --batch-size 10`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	addConfigFlag(sweepCmd)
	sweepCmd.Flags().String("tenant", "", "Restrict the sweep to one tenant")
	sweepCmd.Flags().Bool("force", false, "Refresh every eligible vehicle, stale or not")
	sweepCmd.Flags().Int("batch-size", 0, "Override the configured group size")
}

func sweepOptionsFromFlags(cmd *cobra.Command) (pkgsync.SweepOptions, error) {
	var opts pkgsync.SweepOptions
	var err error

	if opts.TenantID, err = cmd.Flags().GetString("tenant"); err != nil {
		return opts, fmt.Errorf("failed to get tenant flag: %w", err)
	}
	if opts.ForceRefresh, err = cmd.Flags().GetBool("force"); err != nil {
		return opts, fmt.Errorf("failed to get force flag: %w", err)
	}
	if opts.BatchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
		return opts, fmt.Errorf("failed to get batch-size flag: %w", err)
	}
	if opts.BatchSize < 0 {
		return opts, fmt.Errorf("--batch-size must not be negative")
	}
	return opts, nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	opts, err := sweepOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withComponents(ctx, cmd, func(ctx context.Context, components *vrsyncapp.AppComponents) error {
		report, err := components.SyncService.RunSweep(ctx, opts)
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), report)
	})
}
