package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"psmux-uninstall/pkg/uninstall"
)

func runUninstall(cmd *cobra.Command, opts *cliOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// The first interrupt stops the run at the next stage boundary. The handler
	// is released right away so a second one terminates the process.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	u := uninstall.New(uninstallOptions(cfg, opts.dryRun), systemDeps(cfg, opts))
	report := u.Run(ctx)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	switch {
	case report.Failed():
		return &exitError{code: 1, msg: fmt.Sprintf("Uninstall finished with errors in: %s. Re-run after fixing the cause; completed steps are skipped.", report.FailedStages())}
	case report.Interrupted():
		return &exitError{code: exitInterrupted, msg: "Uninstall interrupted. Run it again to finish."}
	case opts.dryRun:
		fmt.Fprintln(out, "Dry run complete. Nothing was changed.")
	default:
		fmt.Fprintln(out, "psmux has been uninstalled.")
	}
	return nil
}
