package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
)

const (
	tabRepeatWindow = 800 * time.Millisecond
	tabListLimit    = 12
)

// StartAction opens the input prompt for action, unless it has nothing to
// act on.
func (s *State) StartAction(action mutate.Action) {
	targets := s.ActionTargets(action)
	if len(targets) == 0 {
		if action.IsProject() {
			s.status = "No project selected"
		} else {
			s.status = "No session selected"
		}
		return
	}
	s.mode = ModeInput
	s.pending = action
	s.input = ""
	s.resetTabCycle()
	s.status = action.Prompt(len(targets))
}

func (s *State) CancelInput() {
	s.closeInput()
	s.status = "Action cancelled"
}

func (s *State) closeInput() {
	s.mode = ModeNormal
	s.input = ""
	s.resetTabCycle()
}

func (s *State) SetInput(text string) {
	s.input = text
	s.resetTabCycle()
}

func (s *State) AppendInput(r rune) {
	s.SetInput(s.input + string(r))
}

func (s *State) BackspaceInput() {
	if s.input == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.input)
	s.SetInput(s.input[:len(s.input)-size])
}

// SubmitInput runs the pending action with the typed input. Validation
// problems leave the prompt open and only set the status. After a batch the
// prompt closes and the selection is cleared whatever the outcome; the
// catalog is rescanned when anything changed.
func (s *State) SubmitInput() error {
	if s.mode != ModeInput {
		return nil
	}
	action := s.pending
	targets := s.ActionTargets(action)
	if len(targets) == 0 {
		s.status = "No applicable sessions for this action"
		return nil
	}

	res, err := s.engine.ApplyBatch(action, targets, s.input)
	switch {
	case errors.Is(err, mutate.ErrConfirmationMismatch):
		s.status = "Delete cancelled: type DELETE to confirm"
		return nil
	case errors.Is(err, mutate.ErrEmptyTarget):
		s.status = "Target path is empty"
		return nil
	case err != nil:
		s.closeInput()
		s.status = err.Error()
		return err
	}

	s.closeInput()
	for _, t := range targets {
		s.cache.Forget(t.Path)
	}
	var reloadErr error
	if res.Changed() {
		reloadErr = s.Reload()
	}
	s.ClearSelection()
	s.status = res.Summary()
	return reloadErr
}

func (s *State) resetTabCycle() {
	s.tabLastAt = time.Time{}
	s.tabLastQuery = ""
}

// TabComplete completes the directory path being typed in the prompt. A
// second Tab within a short window on an unchanged ambiguous input lists the
// candidates in the status line.
func (s *State) TabComplete() {
	query := s.input
	now := s.now()
	repeated := !s.tabLastAt.IsZero() && now.Sub(s.tabLastAt) <= tabRepeatWindow && s.tabLastQuery == query
	s.tabLastAt = now
	s.tabLastQuery = query

	dirPart, prefix := "", query
	if i := strings.LastIndex(query, "/"); i >= 0 {
		dirPart, prefix = query[:i+1], query[i+1:]
	}
	dir := "."
	if dirPart != "" {
		dir = codexhistory.ExpandTilde(dirPart)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.status = fmt.Sprintf("Cannot read directory: %s", filepath.Clean(dir))
		return
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}
	sort.Strings(matches)

	switch {
	case len(matches) == 0:
		s.status = fmt.Sprintf("No directory matches for '%s'", query)
		return
	case len(matches) == 1:
		s.input = dirPart + matches[0] + "/"
		s.status = "Completed: " + s.input
		return
	}

	if lcp := longestCommonPrefix(matches); utf8.RuneCountInString(lcp) > utf8.RuneCountInString(prefix) {
		s.input = dirPart + lcp
		s.status = fmt.Sprintf("%d matches", len(matches))
		return
	}
	if !repeated {
		s.status = fmt.Sprintf("%d matches (Tab again to list)", len(matches))
		return
	}
	shown := matches
	if len(shown) > tabListLimit {
		shown = shown[:tabListLimit]
	}
	s.status = "Matches: " + strings.Join(shown, "  ")
	if extra := len(matches) - len(shown); extra > 0 {
		s.status += fmt.Sprintf("  ... (+%d more)", extra)
	}
}

func longestCommonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := []rune(items[0])
	for _, item := range items[1:] {
		n := 0
		for _, r := range item {
			if n >= len(prefix) || prefix[n] != r {
				break
			}
			n++
		}
		prefix = prefix[:n]
		if n == 0 {
			break
		}
	}
	return string(prefix)
}
