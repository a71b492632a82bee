package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
	"github.com/baaaaaaaka/codex-workspace/internal/workspace"
)

const resizeStep = 2

func (u *ui) handleKey(ev *tcell.EventKey) error {
	if ev.Key() == tcell.KeyCtrlC {
		return errQuit
	}
	switch u.ws.Mode() {
	case workspace.ModeSearch:
		u.handleSearchKey(ev)
		return nil
	case workspace.ModeInput:
		u.handleInputKey(ev)
		return nil
	}
	return u.handleNormalKey(ev)
}

func (u *ui) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		u.ws.EndSearch()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.ws.BackspaceQuery()
	case tcell.KeyRune:
		u.ws.AppendQuery(ev.Rune())
	}
}

func (u *ui) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		u.ws.CancelInput()
	case tcell.KeyEnter:
		_ = u.ws.SubmitInput()
	case tcell.KeyTab:
		u.ws.TabComplete()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		u.ws.BackspaceInput()
	case tcell.KeyRune:
		u.ws.AppendInput(ev.Rune())
	}
}

func (u *ui) handleNormalKey(ev *tcell.EventKey) error {
	ws := u.ws
	inPreview := ws.Focus() == workspace.FocusPreview
	inProjects := ws.Focus() == workspace.FocusProjects

	switch ev.Key() {
	case tcell.KeyTab:
		if inPreview {
			ws.ToggleFoldFocused()
		} else {
			ws.NextFocus()
		}
		return nil
	case tcell.KeyBacktab:
		if inPreview {
			ws.ToggleFoldAll()
		} else {
			ws.PrevFocus()
		}
		return nil
	case tcell.KeyUp:
		u.stepUp()
		return nil
	case tcell.KeyDown:
		u.stepDown()
		return nil
	case tcell.KeyLeft:
		if inPreview {
			ws.FoldFocused()
		}
		return nil
	case tcell.KeyRight:
		if inPreview {
			ws.UnfoldFocused()
		}
		return nil
	case tcell.KeyPgUp:
		ws.ScrollList(ws.Focus(), -innerRows(u.focusedRect()))
		return nil
	case tcell.KeyPgDn:
		ws.ScrollList(ws.Focus(), innerRows(u.focusedRect()))
		return nil
	case tcell.KeyEnter:
		if inPreview {
			ws.ToggleFoldFocused()
		}
		return nil
	case tcell.KeyDelete:
		if !inProjects {
			ws.StartAction(mutate.ActionDelete)
		}
		return nil
	case tcell.KeyRune:
	default:
		return nil
	}

	switch ev.Rune() {
	case 'q':
		return errQuit
	case '/':
		ws.StartSearch()
	case ' ':
		if ws.Focus() == workspace.FocusSessions {
			ws.ToggleSelection()
		}
	case 'a':
		if ws.Focus() == workspace.FocusSessions {
			ws.SelectAll()
		}
	case 'i':
		if ws.Focus() == workspace.FocusSessions {
			ws.InvertSelection()
		}
	case 'k':
		u.stepUp()
	case 'j':
		u.stepDown()
	case 'g':
		_ = ws.Reload()
	case 'm':
		if inProjects {
			ws.StartAction(mutate.ActionProjectRename)
		} else {
			ws.StartAction(mutate.ActionMove)
		}
	case 'c':
		if inProjects {
			ws.StartAction(mutate.ActionProjectCopy)
		} else {
			ws.StartAction(mutate.ActionCopy)
		}
	case 'f':
		if inProjects {
			ws.SetStatus("Project scope supports rename/copy")
		} else {
			ws.StartAction(mutate.ActionFork)
		}
	case 'd':
		if !inProjects {
			ws.StartAction(mutate.ActionDelete)
		}
	case 'r':
		if inProjects {
			ws.StartAction(mutate.ActionProjectRename)
		}
	case 'y':
		switch {
		case inProjects:
			ws.StartAction(mutate.ActionProjectCopy)
		case inPreview:
			u.copyFocusedTurn()
		}
	case 'v':
		ws.TogglePreviewMode()
	case 'z':
		ws.ToggleFoldAtScroll()
	case 'Z':
		if inPreview {
			ws.ToggleFoldAll()
		}
	case 'n':
		if inPreview {
			ws.FocusNextTurn()
		}
	case 'p':
		if inPreview {
			ws.FocusPrevTurn()
		}
	case '[':
		if inPreview {
			ws.FoldFocused()
		}
	case ']':
		if inPreview {
			ws.UnfoldFocused()
		}
	case 'h', 'H', '<':
		ws.ResizeFocused(-resizeStep)
	case 'l', 'L', '>':
		ws.ResizeFocused(resizeStep)
	}
	return nil
}

// stepUp moves the cursor of a list, or the turn focus in the preview.
func (u *ui) stepUp() {
	if u.ws.Focus() == workspace.FocusPreview {
		u.ws.FocusPrevTurn()
		return
	}
	u.ws.MoveUp()
}

func (u *ui) stepDown() {
	if u.ws.Focus() == workspace.FocusPreview {
		u.ws.FocusNextTurn()
		return
	}
	u.ws.MoveDown()
}

func (u *ui) focusedRect() rect {
	switch u.ws.Focus() {
	case workspace.FocusProjects:
		return u.lay.projects
	case workspace.FocusSessions:
		return u.lay.sessions
	}
	return u.lay.preview
}

func (u *ui) copyFocusedTurn() {
	text, ok := u.ws.FocusedTurnText()
	if !ok {
		u.ws.SetStatus("No preview block focused")
		return
	}
	if err := u.clip(text); err != nil {
		u.log.Warn("clipboard copy failed", "err", err)
		u.ws.SetStatus("Clipboard copy failed")
		return
	}
	u.ws.SetStatus(fmt.Sprintf("Copied block (%d chars) to clipboard", len([]rune(text))))
}
