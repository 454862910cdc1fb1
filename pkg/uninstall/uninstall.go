// Package uninstall removes an installed psmux: it stops running instances,
// deletes the install directory, drops it from the user PATH and optionally
// purges user data. Stages run once each, in order; none aborts the run.
package uninstall

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"psmux-uninstall/pkg/confirm"
	"psmux-uninstall/pkg/logger"
	"psmux-uninstall/pkg/pathenv"
	"psmux-uninstall/pkg/procctl"
	"psmux-uninstall/pkg/ui"
)

type Options struct {
	InstallDir   string
	DataDir      string
	ProcessNames []string
	StopArgs     []string
	StopTimeout  time.Duration
	GracePeriod  time.Duration

	PathVar       string
	ListSeparator rune

	PromptTimeout time.Duration
	DryRun        bool
}

// Deps are the process, environment and terminal boundaries. Nil fields get
// live implementations, except Store and Prompter which are required.
type Deps struct {
	Runner   procctl.Runner
	Table    procctl.Table
	Store    pathenv.Store
	Prompter confirm.Prompter
	Waiter   ui.Waiter
	Printer  *ui.Printer

	SelfPID     int32
	PathMatcher pathenv.Matcher
	NameMatcher procctl.NameMatcher
}

type Uninstaller struct {
	opts Options
	deps Deps
}

func New(opts Options, deps Deps) *Uninstaller {
	if opts.ListSeparator == 0 {
		opts.ListSeparator = pathenv.ListSeparator
	}
	if deps.Runner == nil {
		deps.Runner = procctl.ExecRunner{}
	}
	if deps.Table == nil {
		deps.Table = procctl.SystemTable{}
	}
	if deps.Waiter == nil {
		deps.Waiter = ui.SleepWaiter{}
	}
	if deps.Printer == nil {
		deps.Printer = ui.NewPrinter(io.Discard)
	}
	if deps.SelfPID == 0 {
		deps.SelfPID = int32(os.Getpid())
	}
	if deps.PathMatcher == nil {
		deps.PathMatcher = pathenv.PlatformMatcher()
	}
	if deps.NameMatcher == nil {
		deps.NameMatcher = procctl.PlatformNameMatcher()
	}
	return &Uninstaller{opts: opts, deps: deps}
}

// Run attempts every stage exactly once and returns their results in order.
// Once ctx is cancelled the stages not yet started are reported as skipped;
// a cut-short grace period must not be followed by deletion.
func (u *Uninstaller) Run(ctx context.Context) Report {
	stages := []struct {
		name string
		run  func(context.Context) StageResult
	}{
		{StageShutdown, u.shutdown},
		{StageArtifacts, u.removeArtifacts},
		{StageEnvironment, u.cleanEnvironment},
		{StageData, u.purgeData},
	}

	if u.opts.DryRun {
		u.deps.Printer.Title("psmux uninstall (dry run): %s", u.opts.InstallDir)
	} else {
		u.deps.Printer.Title("psmux uninstall: %s", u.opts.InstallDir)
	}

	var report Report
	for _, stage := range stages {
		var res StageResult
		if err := ctx.Err(); err != nil {
			res = StageResult{Stage: stage.name, Status: StatusSkipped, Message: stage.name + " skipped: interrupted", Err: err}
		} else {
			res = stage.run(ctx)
		}
		u.print(res)
		logger.InfoCF("uninstall", "stage finished", map[string]interface{}{
			logger.FieldStage:  res.Stage,
			logger.FieldStatus: string(res.Status),
		})
		report.Stages = append(report.Stages, res)
	}
	return report
}

// FindExecutable returns the first of names present as a file in dir.
func FindExecutable(dir string, names []string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func (u *Uninstaller) print(res StageResult) {
	p := u.deps.Printer
	switch res.Status {
	case StatusOK:
		p.OK("%s", res.Message)
	case StatusAbsent:
		if res.Stage == StageData {
			return
		}
		p.Info("%s", res.Message)
	case StatusPlanned:
		p.Info("%s", res.Message)
	case StatusDeclined, StatusSkipped:
		p.Info("%s", res.Message)
	case StatusWarning:
		p.Warn("%s", res.Message)
	case StatusFailed:
		if res.Err != nil {
			p.Fail("%s: %v", res.Message, res.Err)
		} else {
			p.Fail("%s", res.Message)
		}
	}
	for _, d := range res.Details {
		p.Detail("%s", d)
	}
	for _, w := range res.Warnings {
		p.Detail("warning: %s", w)
	}
}
