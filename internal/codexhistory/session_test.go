package codexhistory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSessionFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sampleChatLines() []string {
	return []string{
		`{"timestamp":"2026-01-01T00:00:00Z","type":"session_meta","payload":{"id":"s1","cwd":"/repo","timestamp":"2026-01-01T00:00:00Z"}}`,
		`{"timestamp":"2026-01-01T00:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","input_text":"hello"}]}}`,
		`{"timestamp":"2026-01-01T00:00:02Z","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"hi there"}]}}`,
		`{"timestamp":"2026-01-01T00:00:03Z","type":"response_item","payload":{"type":"message","role":"developer","content":[{"type":"input_text","text":"rules"}]}}`,
	}
}

// ---------------------------------------------------------------------------
// readSessionSummary
// ---------------------------------------------------------------------------

func TestReadSessionSummary_Fields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jsonl")
	writeSessionFile(t, path,
		`{"type":"session_meta","payload":{"id":"first","cwd":"/old","timestamp":"2025-01-01T00:00:00Z"}}`,
		`{"type":"response_item","payload":{"type":"message","role":"user","content":[{"text":"Deploy FIX"}]}}`,
		``,
		`not json at all`,
		`{"type":"event_msg","payload":{"type":"user_message","message":"Alpha Beta"}}`,
		`{"type":"session_meta","payload":{"id":"second","cwd":"/repo","timestamp":"2026-02-02T00:00:00Z"}}`,
	)

	sum, err := readSessionSummary(path)
	if err != nil {
		t.Fatalf("readSessionSummary: %v", err)
	}
	if sum.ID != "second" || sum.Cwd != "/repo" || sum.StartedAt != "2026-02-02T00:00:00Z" {
		t.Fatalf("last session_meta should win, got %+v", sum)
	}
	if sum.EventCount != 5 {
		t.Errorf("EventCount = %d, want 5", sum.EventCount)
	}
	if sum.SearchBlob != "deploy fix\nalpha beta" {
		t.Errorf("SearchBlob = %q", sum.SearchBlob)
	}
	if sum.FileName != "a.jsonl" {
		t.Errorf("FileName = %q", sum.FileName)
	}
}

func TestReadSessionSummary_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.jsonl")
	writeSessionFile(t, path, `{"type":"turn_context","payload":{}}`)

	sum, err := readSessionSummary(path)
	if err != nil {
		t.Fatalf("readSessionSummary: %v", err)
	}
	if sum.ID != UnknownSessionID || sum.Cwd != UnknownCwd || sum.StartedAt != UnknownStarted {
		t.Fatalf("defaults not applied: %+v", sum)
	}
	if sum.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", sum.EventCount)
	}
}

func TestReadSessionSummary_NonStringFieldsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.jsonl")
	writeSessionFile(t, path,
		`{"type":"session_meta","payload":{"id":42,"cwd":{"x":1}}}`,
		`{"type":"response_item","payload":{"type":"message","content":[{"text":7,"input_text":"skipped"}]}}`,
	)
	sum, err := readSessionSummary(path)
	if err != nil {
		t.Fatalf("readSessionSummary: %v", err)
	}
	if sum.ID != UnknownSessionID || sum.Cwd != UnknownCwd {
		t.Fatalf("non-string meta should be ignored: %+v", sum)
	}
	if sum.SearchBlob != "" {
		t.Fatalf("SearchBlob = %q, want empty", sum.SearchBlob)
	}
}

func TestReadSessionSummary_RejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.jsonl")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, '\n'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readSessionSummary(path); err == nil {
		t.Fatalf("expected error for non-UTF-8 file")
	}
}

// ---------------------------------------------------------------------------
// Scan
// ---------------------------------------------------------------------------

func TestScan_MissingRootIsEmpty(t *testing.T) {
	projects, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("len = %d, want 0", len(projects))
	}
}

func TestScan_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Scan(path); err == nil {
		t.Fatalf("expected error when root is a file")
	}
}

func TestScan_GroupsAndSorts(t *testing.T) {
	root := t.TempDir()
	meta := func(id, cwd, ts string) string {
		return `{"type":"session_meta","payload":{"id":"` + id + `","cwd":"` + cwd + `","timestamp":"` + ts + `"}}`
	}
	writeSessionFile(t, filepath.Join(root, "2026", "01", "01", "one.jsonl"), meta("1", "/repo/b", "2026-01-01T00:00:00Z"))
	writeSessionFile(t, filepath.Join(root, "2026", "01", "02", "two.jsonl"), meta("2", "/repo/b", "2026-01-02T00:00:00Z"))
	writeSessionFile(t, filepath.Join(root, "2026", "01", "03", "three.jsonl"), meta("3", "/repo/a", "2026-01-03T00:00:00Z"))
	writeSessionFile(t, filepath.Join(root, "ignored.jsonl.bak.20260101000000"), meta("4", "/repo/c", "2026-01-04T00:00:00Z"))
	writeSessionFile(t, filepath.Join(root, "notes.txt"), "hello")

	projects, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len = %d, want 2", len(projects))
	}
	if projects[0].Cwd != "/repo/a" || projects[1].Cwd != "/repo/b" {
		t.Fatalf("project order = [%s %s]", projects[0].Cwd, projects[1].Cwd)
	}
	b := projects[1].Sessions
	if len(b) != 2 || b[0].ID != "2" || b[1].ID != "1" {
		t.Fatalf("sessions not newest-first: %+v", b)
	}
	for _, p := range projects {
		for _, s := range p.Sessions {
			if s.Cwd != p.Cwd {
				t.Fatalf("session %s cwd %s in bucket %s", s.ID, s.Cwd, p.Cwd)
			}
		}
	}
	if SessionCount(projects) != 3 {
		t.Fatalf("SessionCount = %d, want 3", SessionCount(projects))
	}
}

func TestScan_SkipsUnreadableFile(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, filepath.Join(root, "ok.jsonl"), `{"type":"session_meta","payload":{"cwd":"/repo"}}`)
	if err := os.WriteFile(filepath.Join(root, "bad.jsonl"), []byte{0xc3, 0x28}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	projects, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if SessionCount(projects) != 1 {
		t.Fatalf("SessionCount = %d, want 1", SessionCount(projects))
	}
}

// ---------------------------------------------------------------------------
// FindSession
// ---------------------------------------------------------------------------

func TestFindSession(t *testing.T) {
	projects := []ProjectBucket{{
		Cwd: "/repo",
		Sessions: []SessionSummary{
			{Path: "/s/a.jsonl", FileName: "a.jsonl", ID: "019c4bb0-aaaa"},
			{Path: "/s/b.jsonl", FileName: "b.jsonl", ID: "019c4bb0-bbbb"},
		},
	}}

	if s, err := FindSession(projects, "a.jsonl"); err != nil || s.Path != "/s/a.jsonl" {
		t.Fatalf("by file name: %+v %v", s, err)
	}
	if s, err := FindSession(projects, "019c4bb0-bbbb"); err != nil || s.Path != "/s/b.jsonl" {
		t.Fatalf("by id: %+v %v", s, err)
	}
	if _, err := FindSession(projects, "019c4bb0"); err == nil {
		t.Fatalf("expected ambiguity error")
	}
	if s, err := FindSession(projects, "019c4bb0-a"); err != nil || s.FileName != "a.jsonl" {
		t.Fatalf("by prefix: %+v %v", s, err)
	}
	if _, err := FindSession(projects, "missing"); err == nil {
		t.Fatalf("expected not found")
	}
}

// ---------------------------------------------------------------------------
// ExtractChatTurns
// ---------------------------------------------------------------------------

func TestExtractChatTurns_NormalizesDeveloperRole(t *testing.T) {
	turns := ExtractChatTurns(sampleChatLines())
	if len(turns) != 3 {
		t.Fatalf("len = %d, want 3", len(turns))
	}
	want := []string{"user", "assistant", "user"}
	for i, role := range want {
		if turns[i].Role != role {
			t.Errorf("turns[%d].Role = %q, want %q", i, turns[i].Role, role)
		}
	}
	if turns[0].Text != "hello" || turns[1].Text != "hi there" {
		t.Errorf("texts = %q, %q", turns[0].Text, turns[1].Text)
	}
	if turns[1].Timestamp != "2026-01-01T00:00:02Z" {
		t.Errorf("timestamp = %q", turns[1].Timestamp)
	}
}

func TestExtractChatTurns_JoinsPartsAndSkipsBlank(t *testing.T) {
	lines := []string{
		`{"type":"response_item","payload":{"type":"message","role":"assistant","content":[{"text":"one"},{"text":"   "},{"output_text":"two"}]}}`,
		`{"type":"response_item","payload":{"type":"message","role":"user","content":[{"text":" "}]}}`,
		`{"type":"response_item","payload":{"type":"reasoning","content":[{"text":"hidden"}]}}`,
	}
	turns := ExtractChatTurns(lines)
	if len(turns) != 1 {
		t.Fatalf("len = %d, want 1", len(turns))
	}
	if turns[0].Text != "one\ntwo" || turns[0].Timestamp != "-" {
		t.Fatalf("turn = %+v", turns[0])
	}
}

func TestExtractChatTurns_FallbackToUserMessages(t *testing.T) {
	lines := []string{
		`{"timestamp":"t1","type":"event_msg","payload":{"type":"user_message","message":"only prompt"}}`,
		`{"type":"event_msg","payload":{"type":"agent_message","message":"ignored"}}`,
	}
	turns := ExtractChatTurns(lines)
	if len(turns) != 1 || turns[0].Role != "user" || turns[0].Text != "only prompt" || turns[0].Timestamp != "t1" {
		t.Fatalf("turns = %+v", turns)
	}
}

func TestExtractChatTurns_NoFallbackWhenMessagesExist(t *testing.T) {
	lines := append(sampleChatLines(), `{"type":"event_msg","payload":{"type":"user_message","message":"dup"}}`)
	if got := len(ExtractChatTurns(lines)); got != 3 {
		t.Fatalf("len = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// SummarizeEventLine
// ---------------------------------------------------------------------------

func TestSummarizeEventLine(t *testing.T) {
	cases := map[string]string{
		`{"timestamp":"t","type":"response_item","payload":{"type":"message","role":"user"}}`: "[t] response_item/message role=user",
		`{"timestamp":"t","type":"response_item","payload":{"type":"function_call"}}`:         "[t] response_item/function_call",
		`{"type":"response_item","payload":{"type":"message"}}`:                               "[-] response_item/message role=?",
		`{"timestamp":"t","type":"event_msg","payload":{}}`:                                   "[t] event_msg/?",
		`{"timestamp":"t","type":"turn_context"}`:                                             "[t] turn_context",
		`{"payload":{}}`: "[-] unknown",
		`{broken`:        InvalidEvent,
	}
	for line, want := range cases {
		if got := SummarizeEventLine(line); got != want {
			t.Errorf("SummarizeEventLine(%s) = %q, want %q", line, got, want)
		}
	}
}

func TestSummarizeEventsSkipsBlankLines(t *testing.T) {
	got := SummarizeEvents([]string{`{"type":"a"}`, "  ", `{"type":"b"}`})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\r\nb\n\nc\n")
	want := []string{"a", "b", "", "c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("SplitLines = %q, want %q", got, want)
	}
	if SplitLines("") != nil {
		t.Fatalf("expected nil for empty content")
	}
}

// ---------------------------------------------------------------------------
// ResolveCodexHome / ExpandTilde
// ---------------------------------------------------------------------------

func TestResolveCodexHome(t *testing.T) {
	t.Setenv(EnvCodexHome, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := ResolveCodexHome("")
	if err != nil {
		t.Fatalf("ResolveCodexHome: %v", err)
	}
	if got != filepath.Join(home, ".codex") {
		t.Fatalf("default = %q", got)
	}

	t.Setenv(EnvCodexHome, "~/custom")
	got, _ = ResolveCodexHome("")
	if got != filepath.Join(home, "custom") {
		t.Fatalf("env = %q", got)
	}

	got, _ = ResolveCodexHome("/override/")
	if got != filepath.Clean("/override/") {
		t.Fatalf("override = %q", got)
	}
	if SessionsRoot("/h") != filepath.Join("/h", "sessions") {
		t.Fatalf("SessionsRoot = %q", SessionsRoot("/h"))
	}
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	if got := ExpandTilde("~"); got != home {
		t.Fatalf("~ = %q", got)
	}
	if got := ExpandTilde("~/a/b"); got != filepath.Join(home, "a", "b") {
		t.Fatalf("~/a/b = %q", got)
	}
	if got := ExpandTilde("/abs/~x"); got != "/abs/~x" {
		t.Fatalf("untouched = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := (SessionSummary{ID: "019c4bb0-1234"}).ShortID(); got != "019c4bb0" {
		t.Fatalf("ShortID = %q", got)
	}
	if got := (SessionSummary{ID: "abc"}).ShortID(); got != "abc" {
		t.Fatalf("ShortID = %q", got)
	}
}
