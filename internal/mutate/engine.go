package mutate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/fsutil"
	"github.com/baaaaaaaka/codex-workspace/internal/ids"
)

const (
	backupStampLayout = "20060102150405"
	forkStampLayout   = "2006-01-02T15:04:05.000Z07:00"
	rolloutLayout     = "2006-01-02T15-04-05"
)

// Engine performs file-level edits on session logs under one sessions root.
type Engine struct {
	Root  string
	Now   func() time.Time
	NewID func() string
	Log   *slog.Logger
}

func NewEngine(root string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		Root:  root,
		Now:   time.Now,
		NewID: ids.NewSessionID,
		Log:   log,
	}
}

// Move rewrites every string "cwd" field in the session to target, in place.
// It reports false without touching the file when the session already
// belongs to target.
func (e *Engine) Move(s codexhistory.SessionSummary, target string) (bool, error) {
	if s.Cwd == target {
		return false, nil
	}
	data, info, err := readSource(s.Path)
	if err != nil {
		return false, err
	}
	out, err := rewriteLines(data, func(rec any) any {
		return walkJSON(rec, replaceString("cwd", target))
	})
	if err != nil {
		return false, fmt.Errorf("rewrite %s: %w", s.FileName, err)
	}
	if _, err := e.backup(s.Path, info.Mode().Perm()); err != nil {
		return false, err
	}
	if err := fsutil.AtomicWriteFile(s.Path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", s.FileName, err)
	}
	e.Log.Info("session moved", "file", s.FileName, "from", s.Cwd, "to", target)
	return true, nil
}

// Copy writes a duplicate of the session with cwd set to target and returns
// the new file's path. The session id is kept.
func (e *Engine) Copy(s codexhistory.SessionSummary, target string) (string, error) {
	return e.duplicate(s, target, false)
}

// Fork is Copy with a fresh session id and start timestamp.
func (e *Engine) Fork(s codexhistory.SessionSummary, target string) (string, error) {
	return e.duplicate(s, target, true)
}

func (e *Engine) duplicate(s codexhistory.SessionSummary, target string, fork bool) (string, error) {
	data, info, err := readSource(s.Path)
	if err != nil {
		return "", err
	}
	now := e.Now().UTC()
	id := s.ID
	meta := map[string]string{}
	if fork {
		id = e.NewID()
		meta["id"] = id
		meta["timestamp"] = now.Format(forkStampLayout)
	}
	out, err := rewriteLines(data, func(rec any) any {
		rec = walkJSON(rec, replaceString("cwd", target))
		if fork {
			rec = setSessionMeta(rec, meta)
		}
		return rec
	})
	if err != nil {
		return "", fmt.Errorf("rewrite %s: %w", s.FileName, err)
	}

	dir := filepath.Join(e.Root, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	name := fmt.Sprintf("rollout-%s-%s.jsonl", now.Format(rolloutLayout), id)
	dest, err := uniquePath(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if err := fsutil.AtomicWriteFile(dest, out, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	e.Log.Info("session duplicated", "file", s.FileName, "dest", dest, "fork", fork, "cwd", target)
	return dest, nil
}

// Delete backs the session up and removes it.
func (e *Engine) Delete(s codexhistory.SessionSummary) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.FileName, err)
	}
	if _, err := e.backup(s.Path, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Remove(s.Path); err != nil {
		return fmt.Errorf("remove %s: %w", s.FileName, err)
	}
	e.Log.Info("session deleted", "file", s.FileName)
	return nil
}

func readSource(path string) ([]byte, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return data, info, nil
}

// backup copies path to "<path>.bak.<stamp>" next to it.
func (e *Engine) backup(path string, perm os.FileMode) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}
	dest, err := uniquePath(path + ".bak." + e.Now().Format(backupStampLayout))
	if err != nil {
		return "", err
	}
	if err := fsutil.AtomicWriteFile(dest, data, perm); err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}
	e.Log.Debug("backup written", "path", dest)
	return dest, nil
}

// uniquePath returns path if nothing exists there, otherwise the first free
// "<stem>-N<ext>" for N up to 9999, then a random suffix.
func uniquePath(path string) (string, error) {
	if !exists(path) {
		return path, nil
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; i < 10000; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if !exists(cand) {
			return cand, nil
		}
	}
	suffix, err := ids.NewSuffix()
	if err != nil {
		return "", fmt.Errorf("unique name for %s: %w", base, err)
	}
	return filepath.Join(dir, stem+"-"+suffix+ext), nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
