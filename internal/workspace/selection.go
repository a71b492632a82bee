package workspace

import (
	"fmt"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
)

// SelectedInProject returns the selected sessions of the current project in
// list order.
func (s *State) SelectedInProject() []codexhistory.SessionSummary {
	p, ok := s.CurrentProject()
	if !ok {
		return nil
	}
	var out []codexhistory.SessionSummary
	for _, sess := range p.Sessions {
		if s.selected[sess.Path] {
			out = append(out, sess)
		}
	}
	return out
}

func (s *State) SelectedCount() int {
	return len(s.SelectedInProject())
}

func (s *State) ToggleSelection() {
	sess, ok := s.CurrentSession()
	if !ok {
		s.status = "No session selected"
		return
	}
	if s.selected[sess.Path] {
		delete(s.selected, sess.Path)
	} else {
		s.selected[sess.Path] = true
	}
	s.reportSelection()
}

func (s *State) SelectAll() {
	p, ok := s.CurrentProject()
	if !ok {
		return
	}
	for _, sess := range p.Sessions {
		s.selected[sess.Path] = true
	}
	s.reportSelection()
}

func (s *State) InvertSelection() {
	p, ok := s.CurrentProject()
	if !ok {
		return
	}
	for _, sess := range p.Sessions {
		if s.selected[sess.Path] {
			delete(s.selected, sess.Path)
		} else {
			s.selected[sess.Path] = true
		}
	}
	s.reportSelection()
}

func (s *State) ClearSelection() {
	clear(s.selected)
}

func (s *State) reportSelection() {
	s.status = fmt.Sprintf("Selected %d session(s)", s.SelectedCount())
}

// ActionTargets lists the sessions an action would apply to. Project actions
// take the whole current project; the others take the selected sessions of
// the current project, or the session under the cursor when none are
// selected.
func (s *State) ActionTargets(action mutate.Action) []codexhistory.SessionSummary {
	if action.IsProject() {
		p, ok := s.CurrentProject()
		if !ok {
			return nil
		}
		return append([]codexhistory.SessionSummary(nil), p.Sessions...)
	}
	if sel := s.SelectedInProject(); len(sel) > 0 {
		return sel
	}
	if sess, ok := s.CurrentSession(); ok {
		return []codexhistory.SessionSummary{sess}
	}
	return nil
}
