package mutate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

type Action int

const (
	ActionMove Action = iota
	ActionCopy
	ActionFork
	ActionDelete
	ActionProjectRename
	ActionProjectCopy
)

// DeleteConfirmation must be typed exactly before a delete batch runs.
const DeleteConfirmation = "DELETE"

var (
	ErrNoTargets            = errors.New("no sessions to act on")
	ErrEmptyTarget          = errors.New("target path is empty")
	ErrConfirmationMismatch = errors.New("type DELETE to confirm")
	ErrUnknownAction        = errors.New("unknown action")
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionCopy:
		return "copy"
	case ActionFork:
		return "fork"
	case ActionDelete:
		return "delete"
	case ActionProjectRename:
		return "project-rename"
	case ActionProjectCopy:
		return "project-copy"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// PastTense is the verb used in batch summaries.
func (a Action) PastTense() string {
	switch a {
	case ActionMove:
		return "moved"
	case ActionCopy, ActionProjectCopy:
		return "copied"
	case ActionFork:
		return "forked"
	case ActionDelete:
		return "deleted"
	case ActionProjectRename:
		return "renamed"
	}
	return a.String()
}

// IsProject reports whether the action applies to a whole project.
func (a Action) IsProject() bool {
	return a == ActionProjectRename || a == ActionProjectCopy
}

// Prompt is the instruction shown while the user types the action's input.
func (a Action) Prompt(n int) string {
	switch a {
	case ActionMove:
		return fmt.Sprintf("Move %d session(s): enter target project path and press Enter", n)
	case ActionCopy:
		return fmt.Sprintf("Copy %d session(s): enter target project path and press Enter", n)
	case ActionFork:
		return fmt.Sprintf("Fork %d session(s): enter target project path and press Enter", n)
	case ActionDelete:
		return fmt.Sprintf("Delete %d session(s): type DELETE and press Enter", n)
	case ActionProjectRename:
		return fmt.Sprintf("Rename folder sessions (%d) to target path and press Enter", n)
	case ActionProjectCopy:
		return fmt.Sprintf("Copy folder sessions (%d) to target path and press Enter", n)
	}
	return ""
}

// ResolveTarget trims the typed target path and expands a leading "~".
func ResolveTarget(input string) string {
	return codexhistory.ExpandTilde(strings.TrimSpace(input))
}
