package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/comp/internal/config"
	"github.com/vango-dev/comp/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// colour is true when stdout is a terminal.
var colour = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "comp",
		Short: "Reconcile HTML trees and inspect component recordings",
		Long: `comp synchronizes a live HTML tree to a target tree with minimal
mutation, the way the component runtime applies renders, and manages
recordings saved by the session recorder.

Examples:
  comp sync --live page.html --target next.html
  comp recordings list --db recordings.db
  comp version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to comp.json or comp.yaml")

	load := func() (*config.Config, error) {
		return loadConfig(configPath)
	}

	rootCmd.AddCommand(
		syncCmd(load),
		recordingsCmd(load),
		versionCmd(),
	)

	if !colour {
		errors.DisableColors()
	}

	if err := rootCmd.Execute(); err != nil {
		if ce, ok := err.(*errors.CompError); ok {
			fmt.Fprintln(os.Stderr, ce.Format())
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[31m", "Error:"), err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config at path, or comp.json/comp.yaml in the working
// directory, falling back to defaults. It also installs the default logger.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	return cfg, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(code, text string) string {
	if !colour {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}
