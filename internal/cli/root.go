package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/config"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "harmony",
	Short: "Play music from the terminal",
	Long: `Harmony is a terminal music player with playlists, liked songs,
a priority queue and suggestions drawn from what you have been listening to.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.harmonyrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if os.IsNotExist(err) {
			return herrors.WithSuggestion(fmt.Errorf("%w: %s", herrors.ErrConfigNotFound, cfgFile),
				"Run 'harmony config init' to create a config file")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", herrors.ErrInvalidConfig, err)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, herrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
