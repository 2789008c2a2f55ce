package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
	"github.com/mydv/vrsync/internal/config"
)

// addConfigFlag registers the required --config flag on cmd
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
}

// loadConfig loads the file named by the --config flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// withComponents builds the pipeline from the --config file, runs fn and
// releases the storage afterwards
func withComponents(
	ctx context.Context,
	cmd *cobra.Command,
	fn func(ctx context.Context, components *vrsyncapp.AppComponents) error,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	components, cleanup, err := vrsyncapp.BuildComponents(ctx, vrsyncapp.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer cleanup()
	// storage is released only once no sweep is left running on it
	defer func() {
		if err := components.SweepCoordinator.Stop(); err != nil {
			slog.Warn("Failed to stop sweep coordinator", "error", err)
		}
	}()

	return fn(ctx, components)
}

// confirm asks a yes/no question on the command's input
func confirm(cmd *cobra.Command, prompt string) bool {
	return confirmFrom(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
}

func confirmFrom(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	response := strings.ToLower(strings.TrimSpace(line))
	return response == "yes" || response == "y"
}
