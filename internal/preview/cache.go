package preview

import (
	"fmt"
	"os"
	"time"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

// Source is the parsed content of one session file.
type Source struct {
	ModTime time.Time
	Turns   []codexhistory.ChatTurn
	Events  []string
}

// Cache memoizes parsed sessions by path. An entry is reparsed only when the
// file's modification time moves past the cached one. Entries are never
// evicted; the cache lives as long as the workspace that owns it.
type Cache struct {
	entries map[string]*Source
	parses  int
}

func NewCache() *Cache {
	return &Cache{entries: map[string]*Source{}}
}

// Load returns the parsed source for path, reading the file when the cache is
// cold or stale.
func (c *Cache) Load(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat session: %w", err)
	}
	mtime := info.ModTime()
	if src, ok := c.entries[path]; ok && !mtime.After(src.ModTime) {
		return src, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	lines := codexhistory.SplitLines(string(b))
	src := &Source{
		ModTime: mtime,
		Turns:   codexhistory.ExtractChatTurns(lines),
		Events:  codexhistory.SummarizeEvents(lines),
	}
	c.entries[path] = src
	c.parses++
	return src, nil
}

// Forget drops the entry for path.
func (c *Cache) Forget(path string) {
	delete(c.entries, path)
}

// Len reports how many sessions are cached.
func (c *Cache) Len() int { return len(c.entries) }
