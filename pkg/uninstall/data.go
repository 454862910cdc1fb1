package uninstall

import (
	"context"
	"fmt"

	"psmux-uninstall/pkg/confirm"
	"psmux-uninstall/pkg/fsclean"
	"psmux-uninstall/pkg/logger"
)

// purgeData deletes the user data dir only after an explicit yes.
func (u *Uninstaller) purgeData(ctx context.Context) StageResult {
	res := StageResult{Stage: StageData}
	dir := u.opts.DataDir

	exists, err := fsclean.Exists(dir)
	if err != nil {
		res.Status, res.Message, res.Err = StatusFailed, "cannot inspect "+dir, err
		return res
	}
	if !exists {
		res.Status, res.Message = StatusAbsent, "no user data at "+dir
		return res
	}
	if u.opts.DryRun {
		res.Status, res.Message = StatusPlanned, "would ask before removing user data at "+dir
		return res
	}
	if u.deps.Prompter == nil {
		res.Status, res.Message = StatusDeclined, "kept user data at "+dir
		return res
	}

	askCtx := ctx
	if u.opts.PromptTimeout > 0 {
		var cancel context.CancelFunc
		askCtx, cancel = context.WithTimeout(ctx, u.opts.PromptTimeout)
		defer cancel()
	}
	answer, err := u.deps.Prompter.Ask(askCtx, confirm.Question(dir))
	if err != nil {
		logger.WarnCF("data", "reading confirmation failed", map[string]interface{}{logger.FieldError: err.Error()})
		res.warn(fmt.Sprintf("could not read answer: %v", err))
		answer = ""
	}

	if !confirm.Decide(exists, answer) {
		res.Status, res.Message = StatusDeclined, "kept user data at "+dir
		return res
	}

	if _, err := fsclean.RemoveTree(dir); err != nil {
		logger.ErrorCF("data", "remove failed", map[string]interface{}{
			logger.FieldPath:  dir,
			logger.FieldError: err.Error(),
		})
		res.Status, res.Message, res.Err = StatusFailed, "could not remove "+dir, err
		return res
	}
	res.Status, res.Message = StatusOK, "removed user data at "+dir
	return res
}
