package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	cfgFile    string
	sourceFlag string

	// cfg is resolved in PersistentPreRunE; tests may assign it directly.
	cfg = defaultSettings()
)

var rootCmd = &cobra.Command{
	Use:   "regnav",
	Short: "Navigate Windows registry trees",
	Long: `regnav walks registry keys and values from offline hive files,
snapshots, the live Windows registry or a built-in demo tree.

Sources:
  hive:<file>   offline hive file (a bare path means the same)
  snap:<file>   snapshot written by "regnav snapshot"
  reg:          live registry (Windows only), paths start with HKLM, HKCU, ...
  demo:         small built-in tree`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = settingsFrom(v)
		return initLogging(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./regnav.yaml or <user config>/regnav/regnav.yaml)")
	rootCmd.PersistentFlags().StringVarP(&sourceFlag, "source", "s", "", "Data source (hive:<file>, snap:<file>, reg:, demo:)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func initLogging(s settings) error {
	opts := logger.Options{
		Enabled: verbose || s.LogDir != "",
		LogDir:  s.LogDir,
		Level:   logger.ParseLevel(s.LogLevel),
	}
	if verbose && s.LogDir == "" {
		opts.Level = slog.LevelDebug
	}
	if err := logger.Init(opts); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
