package workspace

import (
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
)

func (s *State) TogglePreviewMode() {
	if s.previewMode == preview.ModeChat {
		s.previewMode = preview.ModeEvents
	} else {
		s.previewMode = preview.ModeChat
	}
	s.previewScroll = 0
}

// Preview renders the current session at the given inner width and keeps the
// result for fold toggling, turn navigation and text selection.
func (s *State) Preview(width int) preview.Data {
	sess, ok := s.CurrentSession()
	var data preview.Data
	switch {
	case !ok:
		data = preview.Data{Lines: []string{"No session selected"}}
		s.previewPath = ""
	default:
		d, err := preview.Build(s.cache, sess, s.previewMode, width, s.folds.For(sess.Path))
		if err != nil {
			s.log.Warn("preview failed", "path", sess.Path, "err", err)
			d = preview.Data{Lines: []string{"Preview error: " + err.Error()}}
		}
		data = d
		s.previewPath = sess.Path
	}
	s.previewData = data
	s.SetPreviewScroll(s.previewScroll)
	s.ensureFocusValid()
	return data
}

// PreviewFocus returns the focused turn of the last rendered preview.
func (s *State) PreviewFocus() (int, bool) {
	return s.previewFocus, s.previewFocus >= 0
}

func (s *State) ensureFocusValid() {
	headers := s.previewData.HeaderRows
	if len(headers) == 0 {
		s.previewFocus = -1
		return
	}
	if _, ok := s.previewData.HeaderForTurn(s.previewFocus); ok {
		return
	}
	s.previewFocus = headers[0].Turn
}

// ToggleFoldByRow flips the turn whose header is at row and focuses it.
func (s *State) ToggleFoldByRow(row int) bool {
	if s.previewPath == "" {
		return false
	}
	turn, ok := s.previewData.TurnAtRow(row)
	if !ok {
		return false
	}
	s.folds.Toggle(s.previewPath, turn)
	s.previewFocus = turn
	return true
}

// FocusTurnAt focuses the turn containing row, if any.
func (s *State) FocusTurnAt(row int) bool {
	turn, ok := s.previewData.TurnContaining(row)
	if !ok {
		return false
	}
	s.previewFocus = turn
	return true
}

// ToggleFoldAtScroll flips the first turn whose header is at or below the top
// visible row, or the last turn when the view is past every header.
func (s *State) ToggleFoldAtScroll() {
	if s.focus != FocusPreview {
		return
	}
	headers := s.previewData.HeaderRows
	if len(headers) == 0 {
		return
	}
	row := headers[len(headers)-1].Row
	for _, h := range headers {
		if h.Row >= s.previewScroll {
			row = h.Row
			break
		}
	}
	s.ToggleFoldByRow(row)
}

func (s *State) FocusNextTurn() { s.stepFocus(1) }

func (s *State) FocusPrevTurn() { s.stepFocus(-1) }

func (s *State) stepFocus(delta int) {
	s.ensureFocusValid()
	headers := s.previewData.HeaderRows
	for i, h := range headers {
		if h.Turn == s.previewFocus {
			s.previewFocus = headers[clamp(i+delta, 0, len(headers)-1)].Turn
			s.scrollFocusIntoView()
			return
		}
	}
}

func (s *State) scrollFocusIntoView() {
	row, ok := s.previewData.HeaderForTurn(s.previewFocus)
	if !ok {
		return
	}
	s.previewScroll = scrollFor(row, s.previewScroll, s.previewRows)
}

func (s *State) ToggleFoldFocused() {
	s.ensureFocusValid()
	row, ok := s.previewData.HeaderForTurn(s.previewFocus)
	if !ok {
		return
	}
	s.ToggleFoldByRow(row)
	s.scrollFocusIntoView()
}

func (s *State) FoldFocused() {
	s.ensureFocusValid()
	if s.previewPath == "" || s.previewFocus < 0 {
		return
	}
	s.folds.Fold(s.previewPath, s.previewFocus)
	s.scrollFocusIntoView()
}

func (s *State) UnfoldFocused() {
	s.ensureFocusValid()
	if s.previewPath == "" || s.previewFocus < 0 {
		return
	}
	s.folds.Unfold(s.previewPath, s.previewFocus)
	s.scrollFocusIntoView()
}

// ToggleFoldAll expands every turn when all are folded and folds them all
// otherwise.
func (s *State) ToggleFoldAll() {
	if s.previewPath == "" || s.previewData.Turns == 0 {
		return
	}
	if s.folds.ToggleAll(s.previewPath, s.previewData.Turns) {
		s.status = "Collapsed all preview blocks"
	} else {
		s.status = "Expanded all preview blocks"
	}
}

// SelectedText returns the rendered preview text between two positions.
func (s *State) SelectedText(a, b preview.Pos) (string, bool) {
	return preview.SelectedText(s.previewData.Lines, a, b)
}

// ClampPreviewPos limits p to the rendered preview.
func (s *State) ClampPreviewPos(p preview.Pos) preview.Pos {
	return preview.ClampPos(s.previewData.Lines, p)
}

// FocusedTurnText returns the raw text of the focused chat turn.
func (s *State) FocusedTurnText() (string, bool) {
	if s.previewPath == "" || s.previewFocus < 0 {
		return "", false
	}
	src, err := s.cache.Load(s.previewPath)
	if err != nil || s.previewFocus >= len(src.Turns) {
		return "", false
	}
	return src.Turns[s.previewFocus].Text, true
}
