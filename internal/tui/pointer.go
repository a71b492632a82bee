package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
	"github.com/baaaaaaaka/codex-workspace/internal/workspace"
)

type pointerMode int

const (
	pointerIdle pointerMode = iota
	pointerSplitter
	pointerScrollbar
	pointerSelecting
)

type pointerInput int

const (
	pressSplitter pointerInput = iota
	pressScrollbar
	pressPreview
	pressOther
	motion
	release
)

// pointerTransitions maps a mode and an input to the next mode. A press
// always starts a fresh gesture and a release always ends it.
var pointerTransitions = map[pointerMode]map[pointerInput]pointerMode{
	pointerIdle: {
		pressSplitter:  pointerSplitter,
		pressScrollbar: pointerScrollbar,
		pressPreview:   pointerSelecting,
		pressOther:     pointerIdle,
		motion:         pointerIdle,
		release:        pointerIdle,
	},
	pointerSplitter: {
		pressSplitter:  pointerSplitter,
		pressScrollbar: pointerScrollbar,
		pressPreview:   pointerSelecting,
		pressOther:     pointerIdle,
		motion:         pointerSplitter,
		release:        pointerIdle,
	},
	pointerScrollbar: {
		pressSplitter:  pointerSplitter,
		pressScrollbar: pointerScrollbar,
		pressPreview:   pointerSelecting,
		pressOther:     pointerIdle,
		motion:         pointerScrollbar,
		release:        pointerIdle,
	},
	pointerSelecting: {
		pressSplitter:  pointerSplitter,
		pressScrollbar: pointerScrollbar,
		pressPreview:   pointerSelecting,
		pressOther:     pointerIdle,
		motion:         pointerSelecting,
		release:        pointerIdle,
	},
}

type splitter int

const (
	leftSplitter splitter = iota
	rightSplitter
)

type pointer struct {
	mode pointerMode
	held bool

	split  splitter
	scroll workspace.Focus

	// anchor and head are preview content positions. moved is set once the
	// head leaves the anchor, which turns a click into a selection.
	anchor preview.Pos
	head   preview.Pos
	moved  bool
}

func (p *pointer) apply(in pointerInput) pointerMode {
	prev := p.mode
	p.mode = pointerTransitions[prev][in]
	return prev
}

// selection returns the dragged preview range, if any.
func (p *pointer) selection() (preview.Pos, preview.Pos, bool) {
	if p.mode != pointerSelecting || !p.moved {
		return preview.Pos{}, preview.Pos{}, false
	}
	return p.anchor, p.head, true
}

const wheelStep = 3

func (u *ui) handleMouse(ev *tcell.EventMouse) error {
	x, y := ev.Position()
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		u.wheel(x, y, -1)
	case buttons&tcell.WheelDown != 0:
		u.wheel(x, y, 1)
	case buttons&tcell.Button1 != 0:
		if u.ptr.held {
			u.drag(x, y)
			return nil
		}
		u.ptr.held = true
		return u.press(x, y)
	default:
		if u.ptr.held {
			u.ptr.held = false
			u.release(x, y)
		}
	}
	return nil
}

func (u *ui) wheel(x, y, dir int) {
	lay := u.lay
	switch {
	case lay.projects.contains(x, y):
		u.ws.SetFocus(workspace.FocusProjects)
		u.moveBy(dir)
	case lay.sessions.contains(x, y):
		u.ws.SetFocus(workspace.FocusSessions)
		u.moveBy(dir)
	case lay.preview.contains(x, y):
		u.ws.ScrollPreview(dir * wheelStep)
	}
}

func (u *ui) moveBy(dir int) {
	if dir < 0 {
		u.ws.MoveUp()
	} else {
		u.ws.MoveDown()
	}
}

func (u *ui) press(x, y int) error {
	if f, ok := u.scrollbarAt(x, y); ok {
		u.ptr.apply(pressScrollbar)
		u.ptr.scroll = f
		u.jumpScroll(f, y)
		return nil
	}
	if s, ok := u.splitterAt(x, y); ok {
		u.ptr.apply(pressSplitter)
		u.ptr.split = s
		return nil
	}

	lay := u.lay
	switch {
	case lay.search.contains(x, y):
		u.ptr.apply(pressOther)
		u.ws.StartSearch()
	case lay.projects.contains(x, y):
		u.ptr.apply(pressOther)
		u.ws.SetFocus(workspace.FocusProjects)
		if rel := y - lay.projects.y - 1; rel >= 0 && rel < innerRows(lay.projects) {
			u.ws.SelectProject(u.ws.ProjectScroll() + rel)
		}
	case lay.sessions.contains(x, y):
		u.ptr.apply(pressOther)
		u.clickSession(x, y)
	case lay.preview.contains(x, y):
		u.ptr.apply(pressPreview)
		u.ws.SetFocus(workspace.FocusPreview)
		pos := u.previewPos(x, y)
		u.ptr.anchor, u.ptr.head, u.ptr.moved = pos, pos, false
		u.ws.FocusTurnAt(pos.Row)
	case lay.status.contains(x, y):
		u.ptr.apply(pressOther)
		return u.clickStatus(x, y)
	default:
		u.ptr.apply(pressOther)
	}
	return nil
}

func (u *ui) clickSession(x, y int) {
	r := u.lay.sessions
	u.ws.SetFocus(workspace.FocusSessions)
	rel := y - r.y - 1
	if rel < 0 || rel >= innerRows(r) {
		return
	}
	project, ok := u.ws.CurrentProject()
	idx := u.ws.SessionScroll() + rel/workspace.SessionItemHeight
	if !ok || idx >= len(project.Sessions) {
		return
	}
	u.ws.SelectSession(idx)
	// The checkbox sits on the first row of an item, after the cursor mark.
	if rel%workspace.SessionItemHeight == 0 && x-r.x-1 <= len(cursorMark)+4 {
		u.ws.ToggleSelection()
	}
}

func (u *ui) drag(x, y int) {
	u.ptr.apply(motion)
	switch u.ptr.mode {
	case pointerScrollbar:
		u.jumpScroll(u.ptr.scroll, y)
	case pointerSplitter:
		u.resizeFromMouse(u.ptr.split, x)
	case pointerSelecting:
		pos := u.previewPos(x, y)
		if pos != u.ptr.anchor {
			u.ptr.moved = true
		}
		u.ptr.head = pos
	}
}

func (u *ui) release(x, y int) {
	moved := u.ptr.moved
	prev := u.ptr.apply(release)
	u.ptr.moved = false
	if prev != pointerSelecting {
		return
	}
	if moved {
		u.copySelection()
		return
	}
	if u.lay.preview.contains(x, y) {
		u.ws.ToggleFoldByRow(u.ptr.anchor.Row)
	}
}

func (u *ui) copySelection() {
	text, ok := u.ws.SelectedText(u.ptr.anchor, u.ptr.head)
	if !ok {
		return
	}
	lines := strings.Count(text, "\n") + 1
	if err := u.clip(text); err != nil {
		u.log.Warn("clipboard copy failed", "err", err)
		u.ws.SetStatus("Selection captured (clipboard copy failed)")
		return
	}
	u.ws.SetStatus(fmt.Sprintf("Copied selection (%d line(s)) to clipboard", lines))
}

// previewPos maps a screen cell inside the preview to a content position.
func (u *ui) previewPos(x, y int) preview.Pos {
	r := u.lay.preview
	row := u.ws.PreviewScroll() + clamp(y-r.y-1, 0, max(innerRows(r)-1, 0))
	cell := max(x-r.x-1, 0)
	lines := u.ws.LastPreview().Lines
	col := cell
	if row < len(lines) {
		col = runeIndexAt(lines[row], cell)
	}
	return u.ws.ClampPreviewPos(preview.Pos{Row: row, Col: col})
}

// runeIndexAt returns the index of the character drawn at display column
// cell.
func runeIndexAt(line string, cell int) int {
	used := 0
	i := 0
	for _, ch := range line {
		used += runewidth.RuneWidth(ch)
		if used > cell {
			return i
		}
		i++
	}
	return i
}

func (u *ui) scrollbarAt(x, y int) (workspace.Focus, bool) {
	panes := []struct {
		f workspace.Focus
		r rect
	}{
		{workspace.FocusProjects, u.lay.projects},
		{workspace.FocusSessions, u.lay.sessions},
		{workspace.FocusPreview, u.lay.preview},
	}
	for _, p := range panes {
		r := p.r
		if r.w < 2 || r.h < 3 {
			continue
		}
		if x == r.x+r.w-1 && y > r.y && y < r.y+r.h-1 {
			return p.f, true
		}
	}
	return 0, false
}

// splitterAt treats the left border of the sessions and preview panes, and
// the column just before it, as draggable.
func (u *ui) splitterAt(x, y int) (splitter, bool) {
	for _, c := range []struct {
		s splitter
		r rect
	}{{leftSplitter, u.lay.sessions}, {rightSplitter, u.lay.preview}} {
		if y < c.r.y || y >= c.r.y+c.r.h {
			continue
		}
		if x == c.r.x || x+1 == c.r.x {
			return c.s, true
		}
	}
	return 0, false
}

// scrollOffsetFromRow maps a click on a scrollbar to a scroll offset by its
// relative position within the pane's inner rows.
func scrollOffsetFromRow(y int, pane rect, content, viewport int) int {
	if viewport <= 0 || content <= viewport || pane.h <= 2 {
		return 0
	}
	inner := pane.h - 2
	rel := clamp(y-pane.y-1, 0, inner-1)
	maxOff := content - viewport
	if inner <= 1 {
		return maxOff
	}
	return int(math.Round(float64(rel) / float64(inner-1) * float64(maxOff)))
}

func (u *ui) jumpScroll(f workspace.Focus, y int) {
	switch f {
	case workspace.FocusProjects:
		r := u.lay.projects
		off := scrollOffsetFromRow(y, r, len(u.ws.Projects()), innerRows(r))
		u.ws.SetListScroll(f, off)
	case workspace.FocusSessions:
		r := u.lay.sessions
		project, _ := u.ws.CurrentProject()
		off := scrollOffsetFromRow(y, r, len(project.Sessions), innerRows(r)/workspace.SessionItemHeight)
		u.ws.SetListScroll(f, off)
	case workspace.FocusPreview:
		r := u.lay.preview
		off := scrollOffsetFromRow(y, r, len(u.ws.LastPreview().Lines), innerRows(r))
		u.ws.SetListScroll(f, off)
	}
	u.ws.SetFocus(f)
}

// paneSplit converts a dragged splitter column into pane percentages. The
// split keeps eight columns clear of its neighbours, and panes pushed under
// the minimum are topped up from the preview first.
func paneSplit(lay layout, target splitter, mouseX int) (int, int, bool) {
	total := lay.projects.w + lay.sessions.w + lay.preview.w
	if total <= 0 {
		return 0, 0, false
	}
	x0 := lay.projects.x
	split1, split2 := lay.sessions.x, lay.preview.x
	right := x0 + total
	switch target {
	case leftSplitter:
		split1 = clamp(mouseX, x0+8, max(split2-8, x0+8))
	case rightSplitter:
		split2 = clamp(mouseX, split1+8, max(right-8, split1+8))
	}

	p := int(math.Round(float64(split1-x0) / float64(total) * 100))
	s := int(math.Round(float64(split2-split1) / float64(total) * 100))
	const minPct = 15
	r := 100 - p - s
	if p < minPct {
		r -= minPct - p
		p = minPct
	}
	if s < minPct {
		r -= minPct - s
		s = minPct
	}
	if r < minPct {
		if target == leftSplitter {
			p -= minPct - r
		} else {
			s -= minPct - r
		}
	}
	if p < minPct || s < minPct || 100-p-s < minPct {
		return 0, 0, false
	}
	return p, s, true
}

func (u *ui) resizeFromMouse(target splitter, mouseX int) {
	if p, s, ok := paneSplit(u.lay, target, mouseX); ok {
		u.ws.SetPanes(p, s)
	}
}

type button int

const (
	buttonApply button = iota
	buttonCancel
	buttonSelectAll
	buttonInvert
	buttonMove
	buttonCopy
	buttonFork
	buttonDelete
	buttonProjectRename
	buttonProjectCopy
	buttonRefresh
	buttonQuit
)

var buttonLabels = map[button]string{
	buttonApply:         "[Apply]",
	buttonCancel:        "[Cancel]",
	buttonSelectAll:     "[Select All]",
	buttonInvert:        "[Invert]",
	buttonMove:          "[Move]",
	buttonCopy:          "[Copy]",
	buttonFork:          "[Fork]",
	buttonDelete:        "[Delete]",
	buttonProjectRename: "[Rename Folder]",
	buttonProjectCopy:   "[Copy Folder]",
	buttonRefresh:       "[Refresh]",
	buttonQuit:          "[Quit]",
}

func (b button) label() string { return buttonLabels[b] }

func (u *ui) buttons() []button {
	if u.ws.Mode() == workspace.ModeInput {
		return []button{buttonApply, buttonCancel}
	}
	switch u.ws.Focus() {
	case workspace.FocusProjects:
		return []button{buttonProjectRename, buttonProjectCopy, buttonRefresh, buttonQuit}
	case workspace.FocusSessions:
		return []button{buttonSelectAll, buttonInvert, buttonMove, buttonCopy, buttonFork, buttonDelete, buttonRefresh, buttonQuit}
	}
	return []button{buttonMove, buttonCopy, buttonFork, buttonDelete, buttonRefresh, buttonQuit}
}

// buttonsRow is the status row that holds the buttons.
const buttonsRow = 2

func (u *ui) clickStatus(x, y int) error {
	r := u.lay.status
	if y != r.y+1+buttonsRow {
		return nil
	}
	rel := x - r.x - 1
	cursor := 0
	for _, b := range u.buttons() {
		w := displayWidth(b.label())
		if rel >= cursor && rel < cursor+w {
			return u.trigger(b)
		}
		cursor += w + 1
	}
	return nil
}

func (u *ui) trigger(b button) error {
	ws := u.ws
	switch b {
	case buttonApply:
		_ = ws.SubmitInput()
	case buttonCancel:
		ws.CancelInput()
	case buttonSelectAll:
		ws.SelectAll()
	case buttonInvert:
		ws.InvertSelection()
	case buttonMove:
		ws.StartAction(mutate.ActionMove)
	case buttonCopy:
		ws.StartAction(mutate.ActionCopy)
	case buttonFork:
		ws.StartAction(mutate.ActionFork)
	case buttonDelete:
		ws.StartAction(mutate.ActionDelete)
	case buttonProjectRename:
		ws.StartAction(mutate.ActionProjectRename)
	case buttonProjectCopy:
		ws.StartAction(mutate.ActionProjectCopy)
	case buttonRefresh:
		_ = ws.Reload()
	case buttonQuit:
		return errQuit
	}
	return nil
}
