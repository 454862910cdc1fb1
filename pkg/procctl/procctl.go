// Package procctl stops running product instances: first by asking the
// installed binary to shut its server down, then by killing processes by name.
package procctl

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, exe string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, exe string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	return cmd.CombinedOutput()
}

// GracefulStop invokes exe with args (e.g. "kill-server") bounded by timeout.
// The exit status is only interpreted as ran or did not run.
func GracefulStop(ctx context.Context, r Runner, exe string, args []string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := r.Run(ctx, exe, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return out, fmt.Errorf("%s %s timed out after %s", exe, strings.Join(args, " "), timeout)
		}
		return out, fmt.Errorf("%s %s: %w", exe, strings.Join(args, " "), err)
	}
	return out, nil
}

type Process struct {
	PID  int32
	Name string
}

// Table enumerates and kills OS processes.
type Table interface {
	List(ctx context.Context) ([]Process, error)
	Kill(ctx context.Context, pid int32) error
	Exists(ctx context.Context, pid int32) (bool, error)
}

// NameMatcher compares a process image name to a configured executable name.
type NameMatcher func(image, name string) bool

// PlatformNameMatcher is case-insensitive on Windows and exact elsewhere.
func PlatformNameMatcher() NameMatcher {
	if runtime.GOOS == "windows" {
		return strings.EqualFold
	}
	return func(image, name string) bool { return image == name }
}

type KillFailure struct {
	Process Process
	Err     error
}

type KillReport struct {
	Matched []Process
	Killed  []Process
	Failed  []KillFailure
}

// Find lists processes whose image name matches any of names, skipping selfPID.
func Find(ctx context.Context, t Table, names []string, selfPID int32, match NameMatcher) ([]Process, error) {
	procs, err := t.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	var found []Process
	for _, p := range procs {
		if p.PID == selfPID {
			continue
		}
		for _, name := range names {
			if match(p.Name, name) {
				found = append(found, p)
				break
			}
		}
	}
	return found, nil
}

// KillByName force-kills every matching process. A kill that fails because
// the process already exited counts as killed.
func KillByName(ctx context.Context, t Table, names []string, selfPID int32, match NameMatcher) (KillReport, error) {
	matched, err := Find(ctx, t, names, selfPID, match)
	if err != nil {
		return KillReport{}, err
	}
	report := KillReport{Matched: matched}
	for _, p := range matched {
		if err := t.Kill(ctx, p.PID); err != nil {
			if alive, existsErr := t.Exists(ctx, p.PID); existsErr == nil && !alive {
				report.Killed = append(report.Killed, p)
				continue
			}
			report.Failed = append(report.Failed, KillFailure{Process: p, Err: err})
			continue
		}
		report.Killed = append(report.Killed, p)
	}
	return report, nil
}
