package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/tui"
)

var configPathFlag bool

// configCmd opens the configuration menu
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open configuration menu",
	Long:  `Interactive menu to configure gatewaychat settings.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPathFlag {
			return printConfigPaths(cmd)
		}
		return tui.RunConfig()
	},
}

func init() {
	configCmd.Flags().BoolVar(&configPathFlag, "path", false, "Print the configuration paths and exit")
}

func printConfigPaths(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	presetsPath, _ := config.GetPresetsPath()
	tokenPath, _ := config.GetTokenPath()
	storageDir, _ := cfg.StorageDir()
	logPath, _ := cfg.LogPath()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "config\t%s\n", configPath)
	_, _ = fmt.Fprintf(w, "presets\t%s\n", presetsPath)
	_, _ = fmt.Fprintf(w, "token\t%s\n", tokenPath)
	_, _ = fmt.Fprintf(w, "history (%s)\t%s\n", cfg.Storage.Backend, storageDir)
	_, _ = fmt.Fprintf(w, "log\t%s\n", logPath)
	return w.Flush()
}
