package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"psmux-uninstall/pkg/config"
	"psmux-uninstall/pkg/fsclean"
	"psmux-uninstall/pkg/pathenv"
	"psmux-uninstall/pkg/procctl"
	"psmux-uninstall/pkg/ui"
	"psmux-uninstall/pkg/uninstall"
)

type statusReport struct {
	InstallDir     string
	InstallPresent bool
	Executable     string
	InstallFiles   int
	InstallBytes   int64

	DataDir     string
	DataPresent bool
	DataFiles   int
	DataBytes   int64

	PathVar    string
	OnPath     bool
	PathErr    error
	Processes  []procctl.Process
	ProcessErr error
}

func newStatusCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what an uninstall would touch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			st, err := collectStatus(cmd.Context(), cfg, procctl.SystemTable{}, pathenv.UserStore(cfg.Environment.EnvFile), int32(os.Getpid()))
			if err != nil {
				return err
			}
			printStatus(ui.NewPrinter(cmd.OutOrStdout()), st)
			return nil
		},
	}
}

// collectStatus only reads; PATH and process lookups fail soft into the report.
func collectStatus(ctx context.Context, cfg *config.Config, table procctl.Table, store pathenv.Store, selfPID int32) (*statusReport, error) {
	st := &statusReport{
		InstallDir: cfg.InstallDir,
		DataDir:    cfg.DataDir,
		PathVar:    cfg.Environment.PathVar,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := fsclean.Exists(st.InstallDir)
		if err != nil || !ok {
			return err
		}
		st.InstallPresent = true
		st.Executable, _ = uninstall.FindExecutable(st.InstallDir, cfg.Shutdown.ProcessNames)
		st.InstallFiles, st.InstallBytes, err = fsclean.Size(st.InstallDir)
		return err
	})
	g.Go(func() error {
		ok, err := fsclean.Exists(st.DataDir)
		if err != nil || !ok {
			return err
		}
		st.DataPresent = true
		st.DataFiles, st.DataBytes, err = fsclean.Size(st.DataDir)
		return err
	})
	g.Go(func() error {
		value, err := store.Get(st.PathVar)
		if err != nil {
			st.PathErr = err
			return nil
		}
		st.OnPath = pathenv.Contains(value, st.InstallDir, pathenv.ListSeparator, pathenv.PlatformMatcher())
		return nil
	})
	g.Go(func() error {
		st.Processes, st.ProcessErr = procctl.Find(gctx, table, cfg.Shutdown.ProcessNames, selfPID, procctl.PlatformNameMatcher())
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

func printStatus(p *ui.Printer, st *statusReport) {
	p.Title("psmux status")

	if st.InstallPresent {
		p.OK("Install: %s (%s)", st.InstallDir, humanSize(st.InstallFiles, st.InstallBytes))
		if st.Executable != "" {
			p.Detail("executable: %s", st.Executable)
		}
	} else {
		p.Info("Install: %s (not present)", st.InstallDir)
	}

	switch {
	case st.PathErr != nil:
		p.Warn("%s: cannot read (%v)", st.PathVar, st.PathErr)
	case st.OnPath:
		p.OK("%s: contains %s", st.PathVar, st.InstallDir)
	default:
		p.Info("%s: does not contain %s", st.PathVar, st.InstallDir)
	}

	switch {
	case st.ProcessErr != nil:
		p.Warn("Processes: cannot enumerate (%v)", st.ProcessErr)
	case len(st.Processes) == 0:
		p.Info("Processes: none running")
	default:
		parts := make([]string, 0, len(st.Processes))
		for _, proc := range st.Processes {
			parts = append(parts, fmt.Sprintf("%s[%d]", proc.Name, proc.PID))
		}
		p.OK("Processes: %s", strings.Join(parts, ", "))
	}

	if st.DataPresent {
		p.OK("User data: %s (%s)", st.DataDir, humanSize(st.DataFiles, st.DataBytes))
	} else {
		p.Info("User data: %s (not present)", st.DataDir)
	}
}

func humanSize(files int, bytes int64) string {
	unit := "file"
	if files != 1 {
		unit = "files"
	}
	const k = 1024
	switch {
	case bytes >= k*k*k:
		return fmt.Sprintf("%d %s, %.1f GiB", files, unit, float64(bytes)/(k*k*k))
	case bytes >= k*k:
		return fmt.Sprintf("%d %s, %.1f MiB", files, unit, float64(bytes)/(k*k))
	case bytes >= k:
		return fmt.Sprintf("%d %s, %.1f KiB", files, unit, float64(bytes)/k)
	default:
		return fmt.Sprintf("%d %s, %d B", files, unit, bytes)
	}
}
