package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertti/terminwatch/pkg/config"
	"github.com/vertti/terminwatch/pkg/output"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	verbose    bool
	logFile    string

	// settings is the merged configuration for the running command.
	settings config.File
	logger   = slog.Default()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:     "terminwatch",
	Short:   "Watch the Berlin appointment booking page for free slots",
	Long:    "Terminwatch opens the service.berlin.de booking page in Chrome, searches all locations and reports whether appointments might be available.",
	Version: Version,
	// Failures are already printed as results.
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeLog() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to "+config.FileName+" (default: search up from current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
}

// setup loads configuration and logging before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	output.Out = cmd.OutOrStdout()

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	settings, err = config.Load(path, os.Getenv)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if cmd.Flags().Changed("log-file") {
		settings.Log.File = logFile
	}
	logger, closeLog, err = initLogging(cmd.ErrOrStderr(), settings.Log, verbose)
	if err != nil {
		return err
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	path, err := config.FindFile(wd, configPath)
	if err == config.ErrNotFound {
		return "", nil
	}
	return path, err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
