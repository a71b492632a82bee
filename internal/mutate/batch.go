package mutate

import (
	"fmt"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

type Failure struct {
	FileName string
	Err      error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.FileName, f.Err)
}

// BatchResult tallies one action applied to a set of sessions.
type BatchResult struct {
	Action    Action
	Target    string
	Succeeded int
	Skipped   int
	Failures  []Failure
	Created   []string
}

// Changed reports whether anything on disk may differ from the last scan.
func (r BatchResult) Changed() bool {
	return r.Succeeded > 0 || r.Skipped > 0
}

func (r BatchResult) Summary() string {
	name := r.Action.PastTense()
	if len(r.Failures) > 0 {
		return fmt.Sprintf("%s %d session(s), %d failed, skipped %d. First error: %s",
			name, r.Succeeded, len(r.Failures), r.Skipped, r.Failures[0])
	}
	if r.Action == ActionDelete {
		return fmt.Sprintf("%s %d session(s)", name, r.Succeeded)
	}
	if r.Skipped > 0 {
		return fmt.Sprintf("%s %d session(s), skipped %d unchanged -> %s", name, r.Succeeded, r.Skipped, r.Target)
	}
	return fmt.Sprintf("%s %d session(s) -> %s", name, r.Succeeded, r.Target)
}

// ApplyBatch runs action over targets. input is the confirmation word for
// deletes and the target path otherwise. Per-session failures are collected
// in the result; the returned error is set only when nothing was attempted.
func (e *Engine) ApplyBatch(action Action, targets []codexhistory.SessionSummary, input string) (BatchResult, error) {
	res := BatchResult{Action: action}
	if action == ActionDelete {
		if input != DeleteConfirmation {
			return res, ErrConfirmationMismatch
		}
	} else {
		res.Target = ResolveTarget(input)
		if res.Target == "" {
			return res, ErrEmptyTarget
		}
	}
	if len(targets) == 0 {
		return res, ErrNoTargets
	}

	for _, s := range targets {
		var err error
		switch action {
		case ActionMove, ActionProjectRename:
			var changed bool
			changed, err = e.Move(s, res.Target)
			if err == nil && !changed {
				res.Skipped++
				continue
			}
		case ActionCopy, ActionProjectCopy, ActionFork:
			var dest string
			if action == ActionFork {
				dest, err = e.Fork(s, res.Target)
			} else {
				dest, err = e.Copy(s, res.Target)
			}
			if err == nil {
				res.Created = append(res.Created, dest)
			}
		case ActionDelete:
			err = e.Delete(s)
		default:
			return res, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
		if err != nil {
			e.Log.Warn("session action failed", "action", action.String(), "file", s.FileName, "err", err)
			res.Failures = append(res.Failures, Failure{FileName: s.FileName, Err: err})
			continue
		}
		res.Succeeded++
	}
	e.Log.Info("batch applied", "action", action.String(), "ok", res.Succeeded, "skipped", res.Skipped, "failed", len(res.Failures))
	return res, nil
}
