// Package workspace holds the interactive state of one browsing session: the
// scanned catalog, the filtered view, cursors, the multi-select, the action
// prompt and the preview's fold and focus state. It is owned by a single
// control loop and is not safe for concurrent use.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/config"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
	"github.com/baaaaaaaka/codex-workspace/internal/search"
)

const DefaultStatus = "Press q to quit, g to refresh"

type Focus int

const (
	FocusProjects Focus = iota
	FocusSessions
	FocusPreview
)

func (f Focus) String() string {
	switch f {
	case FocusProjects:
		return "projects"
	case FocusSessions:
		return "sessions"
	case FocusPreview:
		return "preview"
	}
	return fmt.Sprintf("focus(%d)", int(f))
}

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeInput
)

type Options struct {
	// Root is the sessions root that is scanned and that copies land under.
	Root   string
	Logger *slog.Logger
	// Engine defaults to mutate.NewEngine(Root, Logger).
	Engine         *mutate.Engine
	PreviewMode    preview.Mode
	ProjectPanePct int
	SessionPanePct int
	// Now is used for tab-completion timing; defaults to time.Now.
	Now func() time.Time
}

type State struct {
	root   string
	log    *slog.Logger
	engine *mutate.Engine
	now    func() time.Time

	catalog    []codexhistory.ProjectBucket
	projects   []codexhistory.ProjectBucket
	projectIdx int
	sessionIdx int
	selected   map[string]bool

	focus   Focus
	mode    Mode
	pending mutate.Action
	input   string

	tabLastAt    time.Time
	tabLastQuery string

	query       string
	searchDirty bool

	previewMode   preview.Mode
	cache         *preview.Cache
	folds         *preview.FoldSet
	previewPath   string
	previewData   preview.Data
	previewFocus  int
	previewScroll int

	projectScroll int
	sessionScroll int
	projectRows   int
	sessionRows   int
	previewRows   int

	projectPct int
	sessionPct int

	status string
}

// New returns an empty workspace. Call Reload to scan.
func New(opts Options) *State {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	engine := opts.Engine
	if engine == nil {
		engine = mutate.NewEngine(opts.Root, log)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := config.Config{ProjectPanePct: opts.ProjectPanePct, SessionPanePct: opts.SessionPanePct}
	project, session := cfg.Panes()

	return &State{
		root:         opts.Root,
		log:          log,
		engine:       engine,
		now:          now,
		selected:     map[string]bool{},
		previewMode:  opts.PreviewMode,
		cache:        preview.NewCache(),
		folds:        preview.NewFoldSet(),
		previewFocus: -1,
		projectRows:  1,
		sessionRows:  1,
		previewRows:  1,
		projectPct:   project,
		sessionPct:   session,
		status:       DefaultStatus,
	}
}

// Reload rescans the sessions root and reapplies the current query. The
// cursor stays on the same session when it still exists.
func (s *State) Reload() error {
	keepPath := ""
	if sess, ok := s.CurrentSession(); ok {
		keepPath = sess.Path
	}

	start := time.Now()
	catalog, err := codexhistory.Scan(s.root)
	if err != nil {
		s.status = fmt.Sprintf("Scan failed: %v", err)
		s.log.Error("scan failed", "root", s.root, "err", err)
		return err
	}
	s.catalog = catalog
	s.log.Info("scan complete",
		"root", s.root,
		"projects", len(catalog),
		"sessions", codexhistory.SessionCount(catalog),
		"duration", time.Since(start),
	)

	s.pruneToCatalog()
	s.filter()
	s.restoreCursor(keepPath)

	if len(s.projects) == 0 {
		s.status = fmt.Sprintf("No sessions found under %s", s.root)
		return nil
	}
	s.status = fmt.Sprintf("Loaded %d projects", len(s.projects))
	return nil
}

func (s *State) pruneToCatalog() {
	live := make(map[string]bool, codexhistory.SessionCount(s.catalog))
	for _, p := range s.catalog {
		for _, sess := range p.Sessions {
			live[sess.Path] = true
		}
	}
	for path := range s.selected {
		if !live[path] {
			delete(s.selected, path)
		}
	}
	s.folds.Prune(func(path string) bool { return live[path] })
}

func (s *State) restoreCursor(path string) {
	if path != "" {
		for pi, p := range s.projects {
			for si, sess := range p.Sessions {
				if sess.Path == path {
					s.projectIdx, s.sessionIdx = pi, si
					s.ensureVisible()
					return
				}
			}
		}
	}
	s.clampCursor()
	s.ensureVisible()
}

func (s *State) clampCursor() {
	s.projectIdx = clamp(s.projectIdx, 0, len(s.projects)-1)
	n := 0
	if p, ok := s.CurrentProject(); ok {
		n = len(p.Sessions)
	}
	s.sessionIdx = clamp(s.sessionIdx, 0, n-1)
}

// filter recomputes the visible view from the catalog.
func (s *State) filter() {
	s.projects = search.Filter(s.catalog, s.query)
	s.searchDirty = false
}

func (s *State) Root() string                           { return s.root }
func (s *State) Catalog() []codexhistory.ProjectBucket  { return s.catalog }
func (s *State) Projects() []codexhistory.ProjectBucket { return s.projects }
func (s *State) ProjectIndex() int                      { return s.projectIdx }
func (s *State) SessionIndex() int                      { return s.sessionIdx }
func (s *State) Focus() Focus                           { return s.focus }
func (s *State) Mode() Mode                             { return s.mode }
func (s *State) Input() string                          { return s.input }
func (s *State) Query() string                          { return s.query }
func (s *State) Status() string                         { return s.status }
func (s *State) SetStatus(msg string)                   { s.status = msg }
func (s *State) PreviewMode() preview.Mode              { return s.previewMode }
func (s *State) PreviewScroll() int                     { return s.previewScroll }
func (s *State) ProjectScroll() int                     { return s.projectScroll }
func (s *State) SessionScroll() int                     { return s.sessionScroll }
func (s *State) PanePcts() (project, session int)       { return s.projectPct, s.sessionPct }
func (s *State) PendingAction() (mutate.Action, bool)   { return s.pending, s.mode == ModeInput }
func (s *State) IsSelected(path string) bool            { return s.selected[path] }
func (s *State) SearchActive() bool                     { return s.mode == ModeSearch || s.query != "" }
func (s *State) SetFocus(f Focus)                       { s.focus = f }
func (s *State) LastPreview() preview.Data              { return s.previewData }

func (s *State) CurrentProject() (codexhistory.ProjectBucket, bool) {
	if s.projectIdx < 0 || s.projectIdx >= len(s.projects) {
		return codexhistory.ProjectBucket{}, false
	}
	return s.projects[s.projectIdx], true
}

func (s *State) CurrentSession() (codexhistory.SessionSummary, bool) {
	p, ok := s.CurrentProject()
	if !ok || s.sessionIdx < 0 || s.sessionIdx >= len(p.Sessions) {
		return codexhistory.SessionSummary{}, false
	}
	return p.Sessions[s.sessionIdx], true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
