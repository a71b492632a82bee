package codexhistory

import (
	"os"
	"path/filepath"
	"strings"
)

const EnvCodexHome = "CODEX_HOME"

// Placeholders for fields a session file never supplied.
const (
	UnknownSessionID = "unknown"
	UnknownCwd       = "<unknown>"
	UnknownStarted   = "unknown"
)

const sessionFileExt = ".jsonl"

// SessionSummary is the scan-time view of one session file. Path is the
// identity used by selection, fold state and the preview cache.
type SessionSummary struct {
	Path       string
	FileName   string
	ID         string
	Cwd        string
	StartedAt  string
	EventCount int
	// SearchBlob holds every user/assistant message text, lowercased and
	// joined by newlines.
	SearchBlob string
}

// ShortID is the first eight characters of the session id.
func (s SessionSummary) ShortID() string {
	r := []rune(s.ID)
	if len(r) <= 8 {
		return s.ID
	}
	return string(r[:8])
}

// ProjectBucket groups sessions that recorded the same cwd.
type ProjectBucket struct {
	Cwd      string
	Sessions []SessionSummary
}

type ChatTurn struct {
	Role      string
	Timestamp string
	Text      string
}

// ResolveCodexHome picks the Codex home directory: the override, then
// $CODEX_HOME, then ~/.codex.
func ResolveCodexHome(override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return filepath.Clean(ExpandTilde(v)), nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvCodexHome)); v != "" {
		return filepath.Clean(ExpandTilde(v)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".codex"), nil
}

// SessionsRoot is where Codex keeps rollout files under its home.
func SessionsRoot(codexHome string) string {
	return filepath.Join(codexHome, "sessions")
}
