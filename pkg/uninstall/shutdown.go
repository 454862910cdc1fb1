package uninstall

import (
	"context"
	"fmt"
	"strings"

	"psmux-uninstall/pkg/logger"
	"psmux-uninstall/pkg/procctl"
)

// shutdown asks a running server to exit, then kills leftovers by name.
// Every failure here is a warning; the stage never fails the run.
func (u *Uninstaller) shutdown(ctx context.Context) StageResult {
	res := StageResult{Stage: StageShutdown}
	names := u.opts.ProcessNames

	if u.opts.DryRun {
		return u.planShutdown(ctx, res)
	}

	issued := false
	if exe, ok := FindExecutable(u.opts.InstallDir, names); ok {
		issued = true
		out, err := procctl.GracefulStop(ctx, u.deps.Runner, exe, u.opts.StopArgs, u.opts.StopTimeout)
		if err != nil {
			logger.DebugCF("shutdown", "graceful stop failed", map[string]interface{}{
				logger.FieldPath:  exe,
				logger.FieldError: err.Error(),
				"output":          strings.TrimSpace(string(out)),
			})
			res.detail(fmt.Sprintf("%s %s did not complete: %v", exe, strings.Join(u.opts.StopArgs, " "), err))
		} else {
			res.detail(fmt.Sprintf("asked server to stop: %s %s", exe, strings.Join(u.opts.StopArgs, " ")))
		}
	} else {
		logger.DebugCF("shutdown", "no executable found, skipping graceful stop", map[string]interface{}{
			logger.FieldPath: u.opts.InstallDir,
		})
	}

	report, err := procctl.KillByName(ctx, u.deps.Table, names, u.deps.SelfPID, u.deps.NameMatcher)
	if err != nil {
		logger.WarnCF("shutdown", "process enumeration failed", map[string]interface{}{logger.FieldError: err.Error()})
		res.warn(fmt.Sprintf("could not enumerate processes: %v", err))
	}
	for _, p := range report.Killed {
		res.detail(fmt.Sprintf("killed %s (pid %d)", p.Name, p.PID))
	}
	for _, f := range report.Failed {
		logger.WarnCF("shutdown", "kill failed", map[string]interface{}{
			logger.FieldPID:     f.Process.PID,
			logger.FieldProcess: f.Process.Name,
			logger.FieldError:   f.Err.Error(),
		})
		res.warn(fmt.Sprintf("could not kill %s (pid %d): %v", f.Process.Name, f.Process.PID, f.Err))
	}
	if len(report.Matched) > 0 {
		issued = true
	}

	if issued {
		if err := u.deps.Waiter.Wait(ctx, u.opts.GracePeriod, "waiting for psmux to release its files"); err != nil {
			res.warn(fmt.Sprintf("grace period interrupted: %v", err))
		}
	}

	switch {
	case len(res.Warnings) > 0:
		res.Status = StatusWarning
		res.Message = "psmux may still be running"
	case !issued:
		res.Status = StatusAbsent
		res.Message = "no running psmux instances"
	default:
		res.Status = StatusOK
		res.Message = "stopped psmux"
	}
	return res
}

func (u *Uninstaller) planShutdown(ctx context.Context, res StageResult) StageResult {
	res.Status = StatusPlanned
	res.Message = "would stop psmux"
	if exe, ok := FindExecutable(u.opts.InstallDir, u.opts.ProcessNames); ok {
		res.detail(fmt.Sprintf("would run: %s %s", exe, strings.Join(u.opts.StopArgs, " ")))
	}
	matched, err := procctl.Find(ctx, u.deps.Table, u.opts.ProcessNames, u.deps.SelfPID, u.deps.NameMatcher)
	if err != nil {
		res.warn(fmt.Sprintf("could not enumerate processes: %v", err))
		return res
	}
	for _, p := range matched {
		res.detail(fmt.Sprintf("would kill %s (pid %d)", p.Name, p.PID))
	}
	return res
}
