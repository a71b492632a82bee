// Package tui runs the interactive three-pane session browser on a tcell
// screen. All state lives in a workspace.State owned by the event loop;
// background goroutines only post events.
package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/baaaaaaaka/codex-workspace/internal/watch"
	"github.com/baaaaaaaka/codex-workspace/internal/workspace"
)

var errQuit = errors.New("quit")

var newScreen = tcell.NewScreen

const (
	searchHeight = 3
	statusHeight = 7
)

type Options struct {
	Workspace *workspace.State
	Logger    *slog.Logger
	// Watch rescans the workspace root when session files change.
	Watch      bool
	WatchDelay time.Duration
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
}

type uiEvent struct {
	when time.Time
	kind string
}

func (e *uiEvent) When() time.Time { return e.when }

type rect struct {
	y int
	x int
	h int
	w int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type layout struct {
	search   rect
	projects rect
	sessions rect
	preview  rect
	status   rect
}

// ui bundles what the handlers need between two draws.
type ui struct {
	screen tcell.Screen
	ws     *workspace.State
	log    *slog.Logger
	lay    layout
	ptr    pointer
	clip   func(string) error
}

// Run draws the workspace and processes input until the user quits or ctx is
// done.
func Run(ctx context.Context, opts Options) error {
	if opts.Workspace == nil {
		return errors.New("workspace is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	screen, err := newScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)

	u := &ui{screen: screen, ws: opts.Workspace, log: log, clip: opts.Clipboard}
	if u.clip == nil {
		u.clip = u.systemClipboard
	}

	if opts.Watch {
		w, err := watch.New(u.ws.Root(), opts.WatchDelay, log, func() {
			screen.PostEvent(&uiEvent{when: time.Now(), kind: "rescan"})
		})
		if err != nil {
			log.Warn("watch disabled", "root", u.ws.Root(), "err", err)
			u.ws.SetStatus("Watch disabled: " + err.Error())
		} else {
			w.Start()
			defer w.Close()
		}
	}

	stop := relayDone(ctx, screen)
	defer stop()

	for {
		u.ws.FlushSearch(func() bool { return hasPendingEvent(screen) })
		u.draw()
		ev := screen.PollEvent()

		switch tev := ev.(type) {
		case nil:
			return nil
		case *uiEvent:
			switch tev.kind {
			case "quit":
				return ctx.Err()
			case "rescan":
				if u.ws.Mode() != workspace.ModeInput {
					_ = u.ws.Reload()
				}
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if err := u.handleKey(tev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		case *tcell.EventMouse:
			if err := u.handleMouse(tev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// relayDone posts a quit event when ctx is done. The returned stop ends the
// relay and waits for its goroutine.
func relayDone(ctx context.Context, screen tcell.Screen) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		_ = screen.PostEvent(&uiEvent{when: time.Now(), kind: "quit"})
	}()
	return func() {
		cancel()
		<-done
	}
}

// hasPendingEvent reports whether input is already queued. Screens that
// cannot tell are treated as idle.
func hasPendingEvent(screen tcell.Screen) bool {
	if p, ok := screen.(interface{ HasPendingEvent() bool }); ok {
		return p.HasPendingEvent()
	}
	return false
}

func computeLayout(width, height int, searchVisible bool, projectPct, sessionPct int) layout {
	var lay layout
	top := 0
	if searchVisible {
		lay.search = rect{y: 0, x: 0, h: min(searchHeight, height), w: width}
		top = lay.search.h
	}
	statusH := clamp(statusHeight, 0, max(height-top-3, 0))
	paneH := max(height-top-statusH, 0)

	projectW := width * projectPct / 100
	sessionW := width * sessionPct / 100
	previewW := max(width-projectW-sessionW, 0)
	lay.projects = rect{y: top, x: 0, h: paneH, w: projectW}
	lay.sessions = rect{y: top, x: projectW, h: paneH, w: sessionW}
	lay.preview = rect{y: top, x: projectW + sessionW, h: paneH, w: previewW}
	lay.status = rect{y: top + paneH, x: 0, h: statusH, w: width}
	return lay
}

func innerRows(r rect) int {
	return max(r.h-2, 0)
}

func writeText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	offset := 0
	for _, ch := range text {
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			continue
		}
		screen.SetContent(x+offset, y, ch, nil, style)
		offset += width
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	var buf strings.Builder
	curWidth := 0
	for _, ch := range s {
		chWidth := runewidth.RuneWidth(ch)
		if chWidth == 0 {
			buf.WriteRune(ch)
			continue
		}
		if curWidth+chWidth > width {
			break
		}
		buf.WriteRune(ch)
		curWidth += chWidth
	}
	return buf.String()
}

func padRight(s string, width int) string {
	if displayWidth(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-displayWidth(s))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
