// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bheeshma/bheeshma"
	"github.com/spf13/cobra"
)

// exitSignaled and exitTerminated mirror the conventional shell exit
// codes for SIGINT and SIGTERM (128+signal), used when the monitored
// command is interrupted rather than exiting on its own.
const (
	exitSignaled   = 130
	exitTerminated = 143
)

func newRunCmd() *cobra.Command {
	var (
		format     string
		outputPath string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Install the monitor, run a command, and report on it",
		Long: `run installs interception hooks, executes the given command to
completion (or until interrupted), uninstalls, and writes a report of
every third-party behavior observed while the command ran. Only calls
made through this process's facades are observed; the child process
itself runs without interception.`,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitoredCommand(cmd, args, format, outputPath, configPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "cli", "output format: cli or json")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this path instead of stdout")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a bheeshma config file (default: search CWD)")

	return cmd
}

func runMonitoredCommand(cmd *cobra.Command, args []string, format, outputPath, configPath string) error {
	cfg, loadErrs := loadConfigOrDefault(configPath)
	for _, e := range loadErrs {
		logger.Warn("config problem, using defaults for affected fields", "err", e)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := bheeshma.NewMonitor(nil)
	report, runErr := monitor.Run(ctx, cfg, func(ctx context.Context) error {
		c := bheeshma.Exec.Command(ctx, args[0], args[1:]...)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	})

	rendered, err := renderReport(report, format)
	if err != nil {
		return err
	}
	if writeErr := writeReport(cmd.OutOrStdout(), outputPath, rendered); writeErr != nil {
		return writeErr
	}

	if ctx.Err() != nil {
		os.Exit(exitForContextErr(ctx))
	}
	if runErr != nil {
		return fmt.Errorf("running command: %w", runErr)
	}
	return nil
}

func exitForContextErr(ctx context.Context) int {
	if ctx.Err() == context.Canceled {
		return exitSignaled
	}
	return exitTerminated
}

func loadConfigOrDefault(path string) (*bheeshma.Config, []error) {
	if path == "" {
		return bheeshma.LoadConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return bheeshma.DefaultConfig(), []error{err}
	}
	return bheeshma.LoadConfigFromBytes(data)
}

func renderReport(report bheeshma.Report, format string) (string, error) {
	switch format {
	case "json":
		data, err := report.Structured()
		if err != nil {
			return "", fmt.Errorf("rendering report: %w", err)
		}
		return string(data), nil
	case "cli", "":
		return report.Text(), nil
	default:
		return "", fmt.Errorf("unknown format %q: must be 'cli' or 'json'", format)
	}
}

func writeReport(stdout io.Writer, outputPath, rendered string) error {
	if outputPath == "" {
		_, err := fmt.Fprintln(stdout, rendered)
		return err
	}
	return os.WriteFile(outputPath, []byte(rendered+"\n"), 0o644)
}
