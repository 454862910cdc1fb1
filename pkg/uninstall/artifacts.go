package uninstall

import (
	"context"

	"psmux-uninstall/pkg/fsclean"
	"psmux-uninstall/pkg/logger"
)

func (u *Uninstaller) removeArtifacts(_ context.Context) StageResult {
	res := StageResult{Stage: StageArtifacts}
	dir := u.opts.InstallDir

	if u.opts.DryRun {
		ok, err := fsclean.Exists(dir)
		switch {
		case err != nil:
			res.Status, res.Message, res.Err = StatusFailed, "cannot inspect "+dir, err
		case !ok:
			res.Status, res.Message = StatusAbsent, "nothing to remove at "+dir
		default:
			res.Status, res.Message = StatusPlanned, "would remove "+dir
		}
		return res
	}

	result, err := fsclean.RemoveTree(dir)
	if err != nil {
		logger.ErrorCF("artifacts", "remove failed", map[string]interface{}{
			logger.FieldPath:  dir,
			logger.FieldError: err.Error(),
		})
		res.Status = StatusFailed
		res.Message = "could not remove " + dir
		res.Err = err
		return res
	}
	if result == fsclean.NotFound {
		res.Status = StatusAbsent
		res.Message = "nothing to remove at " + dir
		return res
	}
	res.Status = StatusOK
	res.Message = "removed " + dir
	return res
}
