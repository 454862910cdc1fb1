// psmux-uninstall - Removes psmux and its traces from a user account
// Stops psmux, deletes its install directory, takes it off the user PATH
// and, after confirmation, deletes its user data.
// License: MIT
//
// Copyright (c) 2026 psmux contributors

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

const exitInterrupted = 130

type cliOptions struct {
	configPath string
	installDir string
	dataDir    string
	debug      bool

	yes      bool
	keepData bool
	dryRun   bool
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "psmux-uninstall",
		Short: "Remove psmux from this machine",
		Long: `Stops any running psmux server, deletes the psmux install directory,
removes it from your user PATH and offers to delete your psmux user data.

Each step is safe to repeat: run it again after an interrupted uninstall.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (JSON); defaults to $PSMUX_UNINSTALL_CONFIG")
	pf.StringVar(&opts.installDir, "install-dir", "", "psmux install directory (default: per-user app data)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "psmux user data directory (default: ~/.psmux)")
	pf.BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	f := root.Flags()
	f.BoolVarP(&opts.yes, "yes", "y", false, "delete user data without asking")
	f.BoolVar(&opts.keepData, "keep-data", false, "keep user data without asking")
	f.BoolVar(&opts.dryRun, "dry-run", false, "show what would be done without changing anything")
	root.MarkFlagsMutuallyExclusive("yes", "keep-data")

	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
