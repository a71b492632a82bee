package config

import (
	"strings"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

const (
	DefaultProjectPanePct = 20
	DefaultSessionPanePct = 38
	MinPanePct            = 15
)

// Panes returns the stored pane widths with defaults filled in and limits
// applied.
func (c Config) Panes() (project, session int) {
	project, session = c.ProjectPanePct, c.SessionPanePct
	if project == 0 {
		project = DefaultProjectPanePct
	}
	if session == 0 {
		session = DefaultSessionPanePct
	}
	return ClampPanes(project, session)
}

func (c *Config) SetPanes(project, session int) {
	c.ProjectPanePct, c.SessionPanePct = ClampPanes(project, session)
}

// ClampPanes keeps each of the three panes at least MinPanePct wide. The
// preview pane takes whatever the other two leave.
func ClampPanes(project, session int) (int, int) {
	project = clampPct(project, MinPanePct, 100-2*MinPanePct)
	session = clampPct(session, MinPanePct, 100-MinPanePct-project)
	return project, session
}

func clampPct(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HomeOverride returns the stored codex home with "~" expanded, or "".
func (c Config) HomeOverride() string {
	home := strings.TrimSpace(c.CodexHome)
	if home == "" {
		return ""
	}
	return codexhistory.ExpandTilde(home)
}
