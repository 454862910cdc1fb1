package procctl

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// SystemTable is the live process table.
type SystemTable struct{}

func (SystemTable) List(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // exited or inaccessible
		}
		out = append(out, Process{PID: p.Pid, Name: name})
	}
	return out, nil
}

func (SystemTable) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.KillWithContext(ctx)
}

func (SystemTable) Exists(ctx context.Context, pid int32) (bool, error) {
	return process.PidExistsWithContext(ctx, pid)
}
