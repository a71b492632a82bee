package workspace

import "github.com/baaaaaaaka/codex-workspace/internal/config"

// SessionItemHeight is the number of rows one session occupies in its list.
const SessionItemHeight = 2

// SetViewport records how many rows each pane can show so the cursors can be
// kept in view.
func (s *State) SetViewport(projectRows, sessionRows, previewRows int) {
	s.projectRows = max(projectRows, 1)
	s.sessionRows = max(sessionRows/SessionItemHeight, 1)
	s.previewRows = max(previewRows, 1)
	s.ensureVisible()
}

func (s *State) NextFocus() {
	s.focus = (s.focus + 1) % 3
}

func (s *State) PrevFocus() {
	s.focus = (s.focus + 2) % 3
}

// MoveUp moves the cursor of the focused list, or scrolls the preview.
func (s *State) MoveUp() { s.move(-1) }

func (s *State) MoveDown() { s.move(1) }

func (s *State) move(delta int) {
	if len(s.projects) == 0 {
		return
	}
	switch s.focus {
	case FocusProjects:
		s.SelectProject(s.projectIdx + delta)
	case FocusSessions:
		s.SelectSession(s.sessionIdx + delta)
	case FocusPreview:
		s.ScrollPreview(delta)
	}
}

// SelectProject moves the project cursor to i, clamped.
func (s *State) SelectProject(i int) {
	if len(s.projects) == 0 {
		return
	}
	s.projectIdx = clamp(i, 0, len(s.projects)-1)
	s.clampCursor()
	s.previewScroll = 0
	s.ensureVisible()
}

// SelectSession moves the session cursor to i within the current project.
func (s *State) SelectSession(i int) {
	p, ok := s.CurrentProject()
	if !ok || len(p.Sessions) == 0 {
		return
	}
	s.sessionIdx = clamp(i, 0, len(p.Sessions)-1)
	s.previewScroll = 0
	s.ensureVisible()
}

func (s *State) ScrollPreview(delta int) {
	s.SetPreviewScroll(s.previewScroll + delta)
}

// SetPreviewScroll sets the preview's first visible row, limited to the last
// rendered preview.
func (s *State) SetPreviewScroll(row int) {
	maxScroll := max(len(s.previewData.Lines)-s.previewRows, 0)
	s.previewScroll = clamp(row, 0, maxScroll)
}

// ScrollList scrolls the project or session list without moving its cursor.
func (s *State) ScrollList(f Focus, delta int) {
	switch f {
	case FocusProjects:
		maxScroll := max(len(s.projects)-s.projectRows, 0)
		s.projectScroll = clamp(s.projectScroll+delta, 0, maxScroll)
	case FocusSessions:
		n := 0
		if p, ok := s.CurrentProject(); ok {
			n = len(p.Sessions)
		}
		s.sessionScroll = clamp(s.sessionScroll+delta, 0, max(n-s.sessionRows, 0))
	case FocusPreview:
		s.ScrollPreview(delta)
	}
}

// SetListScroll jumps a pane to an absolute scroll offset.
func (s *State) SetListScroll(f Focus, offset int) {
	switch f {
	case FocusProjects:
		s.ScrollList(f, offset-s.projectScroll)
	case FocusSessions:
		s.ScrollList(f, offset-s.sessionScroll)
	case FocusPreview:
		s.SetPreviewScroll(offset)
	}
}

func (s *State) ensureVisible() {
	s.projectScroll = scrollFor(s.projectIdx, s.projectScroll, s.projectRows)
	s.sessionScroll = scrollFor(s.sessionIdx, s.sessionScroll, s.sessionRows)
}

func scrollFor(idx, scroll, visible int) int {
	if idx < scroll {
		return idx
	}
	if idx >= scroll+visible {
		return idx + 1 - visible
	}
	return scroll
}

// ResizeFocused grows the focused pane by delta percent, taking the space
// from its neighbour. A change that would shrink any pane below the minimum
// is ignored.
func (s *State) ResizeFocused(delta int) {
	p, ss := s.projectPct, s.sessionPct
	r := 100 - p - ss
	switch s.focus {
	case FocusProjects:
		p += delta
		r -= delta
	case FocusSessions:
		ss += delta
		r -= delta
	case FocusPreview:
		r += delta
		ss -= delta
	}
	if p < config.MinPanePct || ss < config.MinPanePct || r < config.MinPanePct {
		return
	}
	s.projectPct, s.sessionPct = p, ss
}

// SetPanes applies pane widths chosen with the mouse. Widths that break the
// minimum are rejected.
func (s *State) SetPanes(project, session int) bool {
	if project < config.MinPanePct || session < config.MinPanePct || 100-project-session < config.MinPanePct {
		return false
	}
	s.projectPct, s.sessionPct = project, session
	return true
}
