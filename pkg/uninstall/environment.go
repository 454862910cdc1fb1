package uninstall

import (
	"context"
	"fmt"

	"psmux-uninstall/pkg/logger"
	"psmux-uninstall/pkg/pathenv"
)

func (u *Uninstaller) cleanEnvironment(_ context.Context) StageResult {
	res := StageResult{Stage: StageEnvironment}
	name, dir := u.opts.PathVar, u.opts.InstallDir

	if u.deps.Store == nil {
		res.Status, res.Message = StatusFailed, "no environment store configured"
		return res
	}

	apply := pathenv.Remove
	if u.opts.DryRun {
		apply = pathenv.Plan
	}
	out, err := apply(u.deps.Store, name, dir, u.opts.ListSeparator, u.deps.PathMatcher)
	if err != nil {
		logger.ErrorCF("environment", "update failed", map[string]interface{}{
			logger.FieldVar:   name,
			logger.FieldError: err.Error(),
		})
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("could not update user %s", name)
		res.Err = err
		return res
	}

	logger.DebugCF("environment", "filtered", map[string]interface{}{
		logger.FieldVar:            name,
		logger.FieldSegmentsBefore: len(pathenv.Split(out.Before, u.opts.ListSeparator)),
		logger.FieldSegmentsAfter:  len(pathenv.Split(out.After, u.opts.ListSeparator)),
	})

	switch {
	case out.Removed == 0:
		res.Status = StatusAbsent
		res.Message = fmt.Sprintf("%s is not on the user %s", dir, name)
	case u.opts.DryRun:
		res.Status = StatusPlanned
		res.Message = fmt.Sprintf("would remove %d %s entr%s from the user %s", out.Removed, dir, plural(out.Removed, "y", "ies"), name)
	default:
		res.Status = StatusOK
		res.Message = fmt.Sprintf("removed %s from the user %s", dir, name)
		if out.Removed > 1 {
			res.detail(fmt.Sprintf("%d duplicate entries removed", out.Removed))
		}
		res.detail("open a new terminal for the change to take effect")
	}
	return res
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
