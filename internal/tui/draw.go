package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
	"github.com/baaaaaaaka/codex-workspace/internal/workspace"
)

const cursorMark = " > "

var (
	keyStyle    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	goStyle     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	markStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stopStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	mutedStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	userBg      = tcell.NewRGBColor(28, 38, 58)
	assistantBg = tcell.NewRGBColor(30, 32, 34)
	userTint    = tcell.StyleDefault.Background(userBg)
	assistTint  = tcell.StyleDefault.Background(assistantBg)
	edgeColor   = tcell.ColorTeal
	barStyle    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	buttonStyle = tcell.StyleDefault.Reverse(true)
)

type row struct {
	label    string
	dim      bool
	bold     bool
	marked   bool
	selected bool
	focused  bool
}

func (u *ui) draw() {
	screen := u.screen
	screen.Clear()
	w, h := screen.Size()
	projectPct, sessionPct := u.ws.PanePcts()
	u.lay = computeLayout(w, h, u.ws.SearchActive(), projectPct, sessionPct)
	u.ws.SetViewport(innerRows(u.lay.projects), innerRows(u.lay.sessions), innerRows(u.lay.preview))

	if u.ws.SearchActive() {
		u.drawSearch()
	}
	u.drawProjects()
	u.drawSessions()
	u.drawPreview()
	u.drawStatus()
	screen.Show()
}

func (u *ui) paneFocused(f workspace.Focus) bool {
	return u.ws.Focus() == f && u.ws.Mode() == workspace.ModeNormal
}

func (u *ui) drawSearch() {
	r := u.lay.search
	focused := u.ws.Mode() == workspace.ModeSearch
	drawBox(u.screen, r, "Search", focused)
	if r.h < 3 {
		return
	}
	prefix := " "
	if focused {
		prefix = ">"
	}
	writeText(u.screen, r.x+1, r.y+1, "Search ", keyStyle)
	writeText(u.screen, r.x+8, r.y+1, truncate(prefix+" "+u.ws.Query(), max(r.w-9, 0)), tcell.StyleDefault)
}

func projectLabel(p codexhistory.ProjectBucket) string {
	return fmt.Sprintf("%s (%d)", p.Cwd, len(p.Sessions))
}

// sessionLines returns the two rows shown for a session.
func sessionLines(s codexhistory.SessionSummary) (string, string) {
	return fmt.Sprintf("%s | %d events", s.StartedAt, s.EventCount),
		fmt.Sprintf("%s | %s", s.ShortID(), s.FileName)
}

func (u *ui) drawProjects() {
	r := u.lay.projects
	focused := u.paneFocused(workspace.FocusProjects)
	drawBox(u.screen, r, "Projects (cwd) [m/r rename] [c/y copy]", focused)

	projects := u.ws.Projects()
	start := u.ws.ProjectScroll()
	var rows []row
	for i := start; i < len(projects) && len(rows) < innerRows(r); i++ {
		cur := i == u.ws.ProjectIndex()
		rows = append(rows, row{
			label:    marker(cur) + projectLabel(projects[i]),
			dim:      !cur,
			selected: cur,
			focused:  focused,
		})
	}
	drawList(u.screen, r, rows)
	drawScrollbar(u.screen, r, start, len(projects), innerRows(r))
}

func (u *ui) drawSessions() {
	r := u.lay.sessions
	focused := u.paneFocused(workspace.FocusSessions)
	title := fmt.Sprintf("Sessions [%d selected] (Space/checkbox toggle, a all, i invert)", u.ws.SelectedCount())
	drawBox(u.screen, r, title, focused)

	project, _ := u.ws.CurrentProject()
	start := u.ws.SessionScroll()
	var rows []row
	for i := start; i < len(project.Sessions) && len(rows) < innerRows(r); i++ {
		sess := project.Sessions[i]
		cur := i == u.ws.SessionIndex()
		checked := u.ws.IsSelected(sess.Path)
		box := "[ ]"
		if checked {
			box = "[x]"
		}
		line1, line2 := sessionLines(sess)
		rows = append(rows,
			row{label: marker(cur) + box + " " + line1, bold: checked, marked: checked, selected: cur, focused: focused},
			row{label: "       " + line2, dim: !checked, marked: checked, selected: cur, focused: focused},
		)
	}
	drawList(u.screen, r, rows)
	visible := innerRows(r) / workspace.SessionItemHeight
	drawScrollbar(u.screen, r, start, len(project.Sessions), visible)
}

func marker(cur bool) string {
	if cur {
		return cursorMark
	}
	return strings.Repeat(" ", len(cursorMark))
}

func (u *ui) drawPreview() {
	r := u.lay.preview
	focused := u.paneFocused(workspace.FocusPreview)
	drawBox(u.screen, r, fmt.Sprintf("Preview [%s] (v toggle, z fold)", u.ws.PreviewMode()), focused)

	data := u.ws.Preview(max(r.w-2, 1))
	if r.h < 3 || r.w < 3 {
		return
	}
	innerW := r.w - 2
	scroll := u.ws.PreviewScroll()
	headerRow := -1
	if turn, ok := u.ws.PreviewFocus(); ok {
		if row, ok := data.HeaderForTurn(turn); ok {
			headerRow = row
		}
	}
	selA, selB, selecting := u.ptr.selection()

	for i := 0; i < innerRows(r); i++ {
		y := r.y + 1 + i
		idx := scroll + i
		if idx >= len(data.Lines) {
			writeText(u.screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		style := toneStyle(data, idx)
		if idx == headerRow {
			style = style.Bold(true)
			if focused {
				style = style.Underline(true)
			}
		}
		x := r.x + 1
		for col, ch := range []rune(data.Lines[idx]) {
			cw := runewidth.RuneWidth(ch)
			if cw == 0 {
				continue
			}
			if x+cw > r.x+1+innerW {
				break
			}
			st := style
			if selecting && inSelection(selA, selB, idx, col) {
				st = st.Reverse(true)
			}
			u.screen.SetContent(x, y, ch, nil, st)
			x += cw
		}
		for ; x < r.x+1+innerW; x++ {
			u.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	if focused {
		u.drawFocusOutline(data, headerRow)
	}
	drawScrollbar(u.screen, r, scroll, len(data.Lines), innerRows(r))
}

func toneStyle(data preview.Data, row int) tcell.Style {
	tone, ok := data.ToneAt(row)
	switch {
	case !ok:
		return tcell.StyleDefault
	case tone == preview.ToneUser:
		return userTint
	}
	return assistTint
}

// drawFocusOutline frames the visible rows of the focused turn's block. The
// header row keeps its fold marker in the left column.
func (u *ui) drawFocusOutline(data preview.Data, headerRow int) {
	turn, ok := u.ws.PreviewFocus()
	if !ok {
		return
	}
	blk, ok := data.BlockForTurn(turn)
	if !ok {
		return
	}
	r := u.lay.preview
	inner := innerRows(r)
	innerW := r.w - 2
	scroll := u.ws.PreviewScroll()
	first := max(blk.Start, scroll)
	last := min(blk.End, scroll+inner-1)
	if first > last || innerW < 2 {
		return
	}
	left, right := r.x+1, r.x+innerW
	for row := first; row <= last; row++ {
		y := r.y + 1 + row - scroll
		st := toneStyle(data, row).Foreground(edgeColor).Dim(true)
		lch, rch := '│', '│'
		switch row {
		case first:
			lch, rch = '╭', '╮'
		case last:
			lch, rch = '╰', '╯'
		}
		if row != headerRow {
			u.screen.SetContent(left, y, lch, nil, st)
		}
		u.screen.SetContent(right, y, rch, nil, st)
	}
}

func inSelection(a, b preview.Pos, row, col int) bool {
	if b.Row < a.Row || (b.Row == a.Row && b.Col < a.Col) {
		a, b = b, a
	}
	if row < a.Row || row > b.Row {
		return false
	}
	if row == a.Row && col < a.Col {
		return false
	}
	if row == b.Row && col > b.Col {
		return false
	}
	return true
}

func (u *ui) drawStatus() {
	r := u.lay.status
	drawBox(u.screen, r, "Status", false)
	if r.h < 3 || r.w < 3 {
		return
	}
	x, innerW := r.x+1, r.w-2
	lines := [][]statusSegment{
		u.keyHints(),
		{{text: u.metaLine(), style: mutedStyle}},
		u.buttonSegments(),
	}
	if action, ok := u.ws.PendingAction(); ok {
		lines = append(lines, []statusSegment{{text: fmt.Sprintf("* %s target> %s█", actionLabel(action), u.ws.Input())}})
		if status := u.ws.Status(); strings.TrimSpace(status) != "" {
			style := mutedStyle
			if strings.HasPrefix(status, "Matches:") {
				style = markStyle.Bold(true)
			}
			lines = append(lines, []statusSegment{{text: status, style: style}})
		}
	} else {
		lines = append(lines, []statusSegment{{text: u.ws.Status()}})
	}
	for i, segs := range lines {
		if i >= innerRows(r) {
			break
		}
		drawSegments(u.screen, x, r.y+1+i, innerW, segs)
	}
}

func (u *ui) metaLine() string {
	search := "search: <none>"
	if q := u.ws.Query(); strings.TrimSpace(q) != "" {
		search = fmt.Sprintf("search: '%s' (%d projects)", q, len(u.ws.Projects()))
	}
	p, s := u.ws.PanePcts()
	mouse := "ui"
	if u.ptr.mode == pointerSelecting {
		mouse = "select"
	}
	return fmt.Sprintf("%s  pane widths p/s/r: %d/%d/%d  preview: %s  mouse: %s", search, p, s, 100-p-s, u.ws.PreviewMode(), mouse)
}

func actionLabel(a mutate.Action) string {
	switch a {
	case mutate.ActionProjectRename:
		return "RENAME FOLDER"
	case mutate.ActionProjectCopy:
		return "COPY FOLDER"
	}
	return strings.ToUpper(a.String())
}

type statusSegment struct {
	text  string
	style tcell.Style
}

type keyHint struct {
	key   string
	style tcell.Style
	desc  string
}

func hints(items ...keyHint) []statusSegment {
	out := make([]statusSegment, 0, 2*len(items))
	for _, h := range items {
		out = append(out,
			statusSegment{text: h.key, style: h.style},
			statusSegment{text: " " + h.desc + "  "},
		)
	}
	return out
}

func (u *ui) keyHints() []statusSegment {
	switch {
	case u.ws.Mode() == workspace.ModeInput:
		return hints(
			keyHint{"tab", keyStyle, "path-complete"},
			keyHint{"tab tab", keyStyle, "list dirs"},
			keyHint{"enter", goStyle, "apply"},
			keyHint{"esc", stopStyle, "cancel"},
		)
	case u.ws.Mode() == workspace.ModeSearch:
		return hints(
			keyHint{"type", keyStyle, "filter"},
			keyHint{"enter/esc", keyStyle, "leave search"},
		)
	case u.ws.Focus() == workspace.FocusPreview:
		return hints(
			keyHint{"j/k", keyStyle, "block prev/next"},
			keyHint{"left/right", keyStyle, "fold/unfold block"},
			keyHint{"tab", keyStyle, "toggle block"},
			keyHint{"shift+tab", keyStyle, "toggle all blocks"},
			keyHint{"y", goStyle, "copy block"},
			keyHint{"drag", keyStyle, "preview-select+copy"},
		)
	case u.ws.Focus() == workspace.FocusProjects:
		return hints(
			keyHint{"j/k", keyStyle, "project nav"},
			keyHint{"m or r", goStyle, "rename folder sessions"},
			keyHint{"c or y", goStyle, "copy folder sessions"},
			keyHint{"/", keyStyle, "search"},
			keyHint{"q", stopStyle, "quit"},
		)
	}
	return hints(
		keyHint{"j/k", keyStyle, "nav"},
		keyHint{"space", markStyle, "toggle-select"},
		keyHint{"a", markStyle, "select-all"},
		keyHint{"i", markStyle, "invert"},
		keyHint{"m/c/f/d", goStyle, "move/copy/fork/delete selection"},
		keyHint{"/", keyStyle, "search"},
		keyHint{"v", keyStyle, "preview-mode"},
		keyHint{"</>", keyStyle, "resize-pane"},
		keyHint{"g", markStyle, "refresh"},
		keyHint{"q", stopStyle, "quit"},
	)
}

func (u *ui) buttonSegments() []statusSegment {
	var out []statusSegment
	for i, b := range u.buttons() {
		if i > 0 {
			out = append(out, statusSegment{text: " "})
		}
		out = append(out, statusSegment{text: b.label(), style: buttonStyle})
	}
	tail := "  wheel scrolls panes"
	if u.ws.Mode() == workspace.ModeInput {
		tail = "  (click buttons or press Enter/Esc)"
	}
	return append(out, statusSegment{text: tail, style: mutedStyle})
}

func drawSegments(screen tcell.Screen, x, y, width int, segs []statusSegment) {
	used := 0
	for _, seg := range segs {
		if used >= width {
			return
		}
		text := truncate(seg.text, width-used)
		writeText(screen, x+used, y, text, seg.style)
		used += displayWidth(text)
	}
}

func drawBox(screen tcell.Screen, r rect, title string, focused bool) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	borderStyle := tcell.StyleDefault
	if focused {
		borderStyle = borderStyle.Foreground(tcell.ColorYellow).Bold(true)
	} else {
		borderStyle = borderStyle.Dim(true)
	}
	for x := r.x + 1; x < r.x+r.w-1; x++ {
		screen.SetContent(x, r.y, tcell.RuneHLine, nil, borderStyle)
		screen.SetContent(x, r.y+r.h-1, tcell.RuneHLine, nil, borderStyle)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		screen.SetContent(r.x, y, tcell.RuneVLine, nil, borderStyle)
		screen.SetContent(r.x+r.w-1, y, tcell.RuneVLine, nil, borderStyle)
	}
	screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y, tcell.RuneURCorner, nil, borderStyle)
	screen.SetContent(r.x, r.y+r.h-1, tcell.RuneLLCorner, nil, borderStyle)
	screen.SetContent(r.x+r.w-1, r.y+r.h-1, tcell.RuneLRCorner, nil, borderStyle)

	titleStyle := tcell.StyleDefault
	if focused {
		titleStyle = titleStyle.Bold(true)
	}
	writeText(screen, r.x+1, r.y, truncate(title, max(0, r.w-2)), titleStyle)
}

func drawList(screen tcell.Screen, r rect, rows []row) {
	if r.h < 3 || r.w < 3 {
		return
	}
	innerH := r.h - 2
	innerW := r.w - 2
	for i := 0; i < innerH; i++ {
		y := r.y + 1 + i
		if i >= len(rows) {
			writeText(screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		row := rows[i]
		style := tcell.StyleDefault
		if row.marked {
			style = markStyle
		}
		if row.bold {
			style = style.Bold(true)
		}
		if row.selected {
			style = style.Reverse(true)
			if row.focused {
				style = style.Bold(true)
			} else {
				style = style.Dim(true)
			}
		} else if row.dim {
			style = style.Dim(true)
		}
		writeText(screen, r.x+1, y, padRight(truncate(row.label, innerW), innerW), style)
	}
}

// drawScrollbar paints a thin bar over the right border when the content
// overflows.
func drawScrollbar(screen tcell.Screen, r rect, offset, content, viewport int) {
	inner := innerRows(r)
	if viewport <= 0 || content <= viewport || inner == 0 || r.w < 2 {
		return
	}
	maxOff := content - viewport
	thumb := max(1, inner*viewport/content)
	start := (inner - thumb) * clamp(offset, 0, maxOff) / maxOff
	x := r.x + r.w - 1
	for i := 0; i < inner; i++ {
		ch := '│'
		if i >= start && i < start+thumb {
			ch = '┃'
		}
		screen.SetContent(x, r.y+1+i, ch, nil, barStyle)
	}
}
