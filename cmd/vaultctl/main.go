package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/app"
	"github.com/rovshanmuradov/vault-browser/internal/config"
	"github.com/rovshanmuradov/vault-browser/internal/logger"
)

var (
	// Global flags
	configPath string
	debug      bool
	offline    bool

	appLogger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Browse yield vaults from the command line",
	Long: `vaultctl fetches the vault list, filters and sorts it the same way the
TUI does, and prints or exports the result.

Every command reads the same configuration file and VAULTS_* environment
variables as the TUI and the daemon.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLogger = logger.CreatePrettyLogger(debug, cmd.ErrOrStderr())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			_ = appLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the stored snapshot instead of fetching")

	rootCmd.AddCommand(listCmd, chainsCmd, exportCmd, serveCmd)
}

// newRunner loads the configuration and wires the application.
func newRunner() (*app.Runner, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.DebugLogging = true
	}
	return app.NewRunner(cfg, appLogger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
