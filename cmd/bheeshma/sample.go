// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"

	"github.com/bheeshma/bheeshma"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSampleConfigCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sample-config",
		Short: "Print a default bheeshma configuration",
		Long: `sample-config prints the built-in default configuration, suitable
as a starting point for a .bheeshmarc.json or bheeshma.config.yaml file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := bheeshma.DefaultConfig()
			var (
				data []byte
				err  error
			)
			switch format {
			case "yaml":
				data, err = yaml.Marshal(cfg)
			case "json", "":
				data, err = json.MarshalIndent(cfg, "", "  ")
			default:
				return fmt.Errorf("unknown format %q: must be 'json' or 'yaml'", format)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")

	return cmd
}
