package mutate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "sessions")
	e := NewEngine(root, nil)
	e.Now = func() time.Time { return fixedNow }
	e.NewID = func() string { return "forked-id" }
	return e, root
}

func writeSession(t *testing.T, path string, lines ...string) codexhistory.SessionSummary {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return codexhistory.SessionSummary{
		Path:     path,
		FileName: filepath.Base(path),
		ID:       "s1",
		Cwd:      "/old",
	}
}

func sessionLines() []string {
	return []string{
		`{"type":"session_meta","payload":{"id":"s1","cwd":"/old","timestamp":"2026-01-01T00:00:00Z"}}`,
		`{"type":"turn_context","payload":{"cwd":"/old","nested":[{"cwd":"/old"},{"cwd":7}]}}`,
		`{"type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"a <b> & c"}]}}`,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func backups(t *testing.T, path string) []string {
	t.Helper()
	matches, err := filepath.Glob(path + ".bak.*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

// ---------------------------------------------------------------------------
// Move
// ---------------------------------------------------------------------------

func TestMove_RewritesEveryCwdAndBacksUp(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "2026", "01", "01", "a.jsonl")
	s := writeSession(t, path, sessionLines()...)
	original := readFile(t, path)

	changed, err := e.Move(s, "/new")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !changed {
		t.Fatal("Move reported no change")
	}

	got := readFile(t, path)
	if strings.Contains(got, `"/old"`) {
		t.Fatalf("old cwd survived:\n%s", got)
	}
	if strings.Count(got, `"cwd":"/new"`) != 3 {
		t.Fatalf("want 3 rewritten cwd fields:\n%s", got)
	}
	if !strings.Contains(got, `"cwd":7`) {
		t.Errorf("non-string cwd should be untouched:\n%s", got)
	}
	if !strings.Contains(got, `a <b> & c`) {
		t.Errorf("text should not be HTML-escaped:\n%s", got)
	}

	baks := backups(t, path)
	if len(baks) != 1 {
		t.Fatalf("backups = %v, want 1", baks)
	}
	if want := path + ".bak.20260304050607"; baks[0] != want {
		t.Errorf("backup = %q, want %q", baks[0], want)
	}
	if readFile(t, baks[0]) != original {
		t.Error("backup content differs from original")
	}

	projects, err := codexhistory.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(projects) != 1 || projects[0].Cwd != "/new" {
		t.Fatalf("rescan projects = %+v", projects)
	}
}

func TestMove_SameCwdIsSkipped(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "a.jsonl")
	s := writeSession(t, path, sessionLines()...)

	changed, err := e.Move(s, "/old")
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if changed {
		t.Fatal("Move should skip when cwd already matches")
	}
	if len(backups(t, path)) != 0 {
		t.Error("skip should not write a backup")
	}
}

func TestMove_InvalidJSONLeavesFileAlone(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "a.jsonl")
	s := writeSession(t, path, sessionLines()[0], `{broken`)
	original := readFile(t, path)

	_, err := e.Move(s, "/new")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
	if readFile(t, path) != original {
		t.Error("file modified despite error")
	}
	if len(backups(t, path)) != 0 {
		t.Error("no backup expected when the rewrite fails")
	}
}

func TestMove_KeepsBlankLines(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "a.jsonl")
	s := writeSession(t, path, sessionLines()[0], ``, `{"type":"x","n":1.50}`)

	if _, err := e.Move(s, "/new"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[1] != "" {
		t.Errorf("blank line = %q", lines[1])
	}
	if lines[2] != `{"n":1.50,"type":"x"}` {
		t.Errorf("line 3 = %q", lines[2])
	}
}

// ---------------------------------------------------------------------------
// Copy / Fork
// ---------------------------------------------------------------------------

func TestCopy_WritesDatedRolloutUnderNewProject(t *testing.T) {
	e, root := newTestEngine(t)
	src := filepath.Join(t.TempDir(), "src.jsonl")
	s := writeSession(t, src, sessionLines()...)
	original := readFile(t, src)

	dest, err := e.Copy(s, "/new")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	want := filepath.Join(root, "2026", "03", "04", "rollout-2026-03-04T05-06-07-s1.jsonl")
	if dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
	if readFile(t, src) != original {
		t.Error("source changed by copy")
	}

	projects, err := codexhistory.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(projects) != 1 || projects[0].Cwd != "/new" {
		t.Fatalf("projects = %+v", projects)
	}
	if got := projects[0].Sessions[0]; got.ID != "s1" || got.StartedAt != "2026-01-01T00:00:00Z" {
		t.Errorf("copy should keep id and start: %+v", got)
	}
}

func TestCopy_TwiceGetsUniqueName(t *testing.T) {
	e, _ := newTestEngine(t)
	s := writeSession(t, filepath.Join(t.TempDir(), "src.jsonl"), sessionLines()...)

	first, err := e.Copy(s, "/new")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	second, err := e.Copy(s, "/new")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if want := strings.TrimSuffix(first, ".jsonl") + "-1.jsonl"; second != want {
		t.Fatalf("second = %q, want %q", second, want)
	}
}

func TestFork_AssignsNewIdentity(t *testing.T) {
	e, root := newTestEngine(t)
	s := writeSession(t, filepath.Join(t.TempDir(), "src.jsonl"), sessionLines()...)

	dest, err := e.Fork(s, "/new")
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if !strings.HasSuffix(dest, "-forked-id.jsonl") {
		t.Fatalf("dest = %q", dest)
	}

	projects, err := codexhistory.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(projects) != 1 || len(projects[0].Sessions) != 1 {
		t.Fatalf("projects = %+v", projects)
	}
	got := projects[0].Sessions[0]
	if got.ID != "forked-id" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.StartedAt != "2026-03-04T05:06:07.000Z" {
		t.Errorf("StartedAt = %q", got.StartedAt)
	}
	if got.Cwd != "/new" {
		t.Errorf("Cwd = %q", got.Cwd)
	}
}

func TestFork_DefaultIDIsFresh(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sessions")
	e := NewEngine(root, nil)
	s := writeSession(t, filepath.Join(t.TempDir(), "src.jsonl"), sessionLines()...)

	dest, err := e.Fork(s, "/new")
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}
	if strings.Contains(filepath.Base(dest), "-s1.jsonl") {
		t.Fatalf("fork kept the source id: %s", dest)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete_RemovesAfterBackup(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "a.jsonl")
	s := writeSession(t, path, sessionLines()...)
	original := readFile(t, path)

	if err := e.Delete(s); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
	baks := backups(t, path)
	if len(baks) != 1 || readFile(t, baks[0]) != original {
		t.Fatalf("backup missing or wrong: %v", baks)
	}
}

func TestDelete_MissingFile(t *testing.T) {
	e, root := newTestEngine(t)
	s := codexhistory.SessionSummary{Path: filepath.Join(root, "gone.jsonl"), FileName: "gone.jsonl"}
	if err := e.Delete(s); err == nil {
		t.Fatal("expected error")
	}
}

// ---------------------------------------------------------------------------
// ApplyBatch
// ---------------------------------------------------------------------------

func TestApplyBatch_DeleteNeedsExactConfirmation(t *testing.T) {
	e, root := newTestEngine(t)
	path := filepath.Join(root, "a.jsonl")
	s := writeSession(t, path, sessionLines()...)

	_, err := e.ApplyBatch(ActionDelete, []codexhistory.SessionSummary{s}, "delete")
	if !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("err = %v, want ErrConfirmationMismatch", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file removed without confirmation: %v", err)
	}

	res, err := e.ApplyBatch(ActionDelete, []codexhistory.SessionSummary{s}, DeleteConfirmation)
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if got := res.Summary(); got != "deleted 1 session(s)" {
		t.Errorf("Summary = %q", got)
	}
}

func TestApplyBatch_EmptyTargetAndNoSessions(t *testing.T) {
	e, root := newTestEngine(t)
	s := writeSession(t, filepath.Join(root, "a.jsonl"), sessionLines()...)

	if _, err := e.ApplyBatch(ActionMove, []codexhistory.SessionSummary{s}, "   "); !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("err = %v, want ErrEmptyTarget", err)
	}
	if _, err := e.ApplyBatch(ActionCopy, nil, "/new"); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("err = %v, want ErrNoTargets", err)
	}
}

func TestApplyBatch_CollectsFailures(t *testing.T) {
	e, root := newTestEngine(t)
	good := writeSession(t, filepath.Join(root, "a.jsonl"), sessionLines()...)
	missing := codexhistory.SessionSummary{Path: filepath.Join(root, "missing.jsonl"), FileName: "missing.jsonl", Cwd: "/old"}

	res, err := e.ApplyBatch(ActionMove, []codexhistory.SessionSummary{good, missing}, "/new")
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.Succeeded != 1 || len(res.Failures) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Failures[0].FileName != "missing.jsonl" {
		t.Errorf("failure = %v", res.Failures[0])
	}
	if !strings.HasPrefix(res.Summary(), "moved 1 session(s), 1 failed, skipped 0. First error: missing.jsonl: ") {
		t.Errorf("Summary = %q", res.Summary())
	}
	if !res.Changed() {
		t.Error("Changed should be true")
	}
}

func TestApplyBatch_SkipsUnchanged(t *testing.T) {
	e, root := newTestEngine(t)
	a := writeSession(t, filepath.Join(root, "a.jsonl"), sessionLines()...)
	b := writeSession(t, filepath.Join(root, "b.jsonl"), sessionLines()...)
	b.Cwd = "/new"

	res, err := e.ApplyBatch(ActionProjectRename, []codexhistory.SessionSummary{a, b}, " /new ")
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if got := res.Summary(); got != "renamed 1 session(s), skipped 1 unchanged -> /new" {
		t.Errorf("Summary = %q", got)
	}
}

func TestApplyBatch_CopyRecordsCreatedPaths(t *testing.T) {
	e, root := newTestEngine(t)
	a := writeSession(t, filepath.Join(root, "a.jsonl"), sessionLines()...)

	res, err := e.ApplyBatch(ActionProjectCopy, []codexhistory.SessionSummary{a}, "/dest")
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("Created = %v", res.Created)
	}
	if got := res.Summary(); got != "copied 1 session(s) -> /dest" {
		t.Errorf("Summary = %q", got)
	}
}

func TestApplyBatch_ExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	e, root := newTestEngine(t)
	a := writeSession(t, filepath.Join(root, "a.jsonl"), sessionLines()...)

	res, err := e.ApplyBatch(ActionMove, []codexhistory.SessionSummary{a}, "~/proj")
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if want := filepath.Join(home, "proj"); res.Target != want {
		t.Fatalf("Target = %q, want %q", res.Target, want)
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jsonl")
	got, err := uniquePath(path)
	if err != nil || got != path {
		t.Fatalf("free path: got %q, %v", got, err)
	}
	for _, name := range []string{"x.jsonl", "x-1.jsonl"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err = uniquePath(path)
	if err != nil {
		t.Fatalf("uniquePath: %v", err)
	}
	if want := filepath.Join(dir, "x-2.jsonl"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSetSessionMeta_OnlyTouchesMetaObjects(t *testing.T) {
	meta := map[string]string{"id": "n"}
	rec := map[string]any{"type": "session_meta", "payload": "not an object"}
	if got := setSessionMeta(rec, meta); got.(map[string]any)["payload"] != "not an object" {
		t.Fatalf("non-object payload changed: %v", got)
	}
	other := map[string]any{"type": "event_msg", "payload": map[string]any{"id": "old"}}
	setSessionMeta(other, meta)
	if other["payload"].(map[string]any)["id"] != "old" {
		t.Fatal("non-meta record changed")
	}
}

func TestActionPrompt(t *testing.T) {
	if got := ActionDelete.Prompt(3); got != "Delete 3 session(s): type DELETE and press Enter" {
		t.Errorf("delete prompt = %q", got)
	}
	if got := ActionProjectRename.Prompt(2); got != "Rename folder sessions (2) to target path and press Enter" {
		t.Errorf("rename prompt = %q", got)
	}
	if !ActionProjectCopy.IsProject() || ActionFork.IsProject() {
		t.Error("IsProject mismatch")
	}
}
