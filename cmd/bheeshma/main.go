// Package main implements the bheeshma CLI: install the monitor around
// a command, then report on the third-party behavior it observed.
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// logger is the CLI-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// version is set by build flags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "bheeshma",
		Short:   "Runtime dependency behavior monitor",
		Version: version,
		Long: `bheeshma watches the environment, filesystem, network, and
child-process calls a Node.js-style dependency tree makes while it
runs, attributes each call to the package that made it, and reports
which packages look risky.`,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newSampleConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
