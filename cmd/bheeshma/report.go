// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bheeshma/bheeshma"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		inPath string
		format string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a previously saved JSON report as text",
		Long: `report reads a structured JSON report (as produced by
"bheeshma run --format json") and re-renders it, e.g. back to the
plain-text CLI view. Useful for archiving a run's JSON output and
formatting it for humans later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readReportInput(inPath)
			if err != nil {
				return err
			}
			var report bheeshma.Report
			if err := json.Unmarshal(data, &report); err != nil {
				return fmt.Errorf("parsing report: %w", err)
			}
			rendered, err := renderReport(report, format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "path to a JSON report file (default: stdin)")
	cmd.Flags().StringVar(&format, "format", "cli", "output format: cli or json")

	return cmd
}

func readReportInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
