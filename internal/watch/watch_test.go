package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, root string) <-chan struct{} {
	t.Helper()
	changed := make(chan struct{}, 16)
	w, err := New(root, 20*time.Millisecond, nil, func() { changed <- struct{}{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	t.Cleanup(func() { _ = w.Close() })
	return changed
}

func waitChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_ReportsSessionWrite(t *testing.T) {
	root := t.TempDir()
	changed := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "a.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitChange(t, changed)
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	changed := startWatcher(t, root)

	dir := filepath.Join(root, "2026", "01")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitChange(t, changed)

	// Let the new directory be registered before writing into it.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitChange(t, changed)
}

func TestNew_MissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil, nil); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestIsSessionFile(t *testing.T) {
	cases := map[string]bool{
		"/r/a.jsonl":                    true,
		"/r/a.jsonl.bak.20260101000000": false,
		"/r/.a.jsonl.tmp-123":           false,
		"/r/notes.txt":                  false,
	}
	for path, want := range cases {
		if got := isSessionFile(path); got != want {
			t.Errorf("isSessionFile(%q) = %v, want %v", path, got, want)
		}
	}
}
