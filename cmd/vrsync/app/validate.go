package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "✓ Valid configuration")
		_, _ = fmt.Fprintf(out, "  Registry endpoint: %s\n", cfg.Registry.Endpoint)
		_, _ = fmt.Fprintf(out, "  Storage: %s\n", cfg.Storage.GetType())
		_, _ = fmt.Fprintf(out, "  Scheduled sweeps: %t (every %s)\n", cfg.Sync.Enabled, cfg.Sync.GetInterval())
		_, _ = fmt.Fprintf(out, "  Batch size: %d, request delay: %s, batch delay: %s\n",
			cfg.Sync.GetBatchSize(), cfg.Sync.GetRequestDelay(), cfg.Sync.GetBatchDelay())
		_, _ = fmt.Fprintf(out, "  API auth: %s\n", cfg.Auth.GetMode())
		return nil
	},
}

func init() {
	addConfigFlag(validateCmd)
}
