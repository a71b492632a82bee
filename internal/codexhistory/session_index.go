package codexhistory

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var errNotText = errors.New("session file is not valid UTF-8")

// readSessionSummary streams one session file and builds its summary.
// Only I/O failures and non-text content reject the file; lines that are not
// JSON still count as events.
func readSessionSummary(path string) (SessionSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return SessionSummary{}, err
	}
	defer f.Close()

	sum := SessionSummary{
		Path:      path,
		FileName:  filepath.Base(path),
		ID:        UnknownSessionID,
		Cwd:       UnknownCwd,
		StartedAt: UnknownStarted,
	}
	var parts []string

	reader := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return SessionSummary{}, err
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			if !utf8.Valid(line) {
				return SessionSummary{}, errNotText
			}
			sum.EventCount++
			parts = processSummaryLine(line, &sum, parts)
		}
		if err == io.EOF {
			break
		}
	}

	sum.SearchBlob = strings.Join(parts, "\n")
	return sum, nil
}

func processSummaryLine(line []byte, sum *SessionSummary, parts []string) []string {
	if !gjson.ValidBytes(line) {
		return parts
	}
	rec := gjson.ParseBytes(line)
	payload := rec.Get("payload")

	switch stringField(rec, "type") {
	case "session_meta":
		if v, ok := stringValue(payload.Get("id")); ok {
			sum.ID = v
		}
		if v, ok := stringValue(payload.Get("cwd")); ok {
			sum.Cwd = v
		}
		if v, ok := stringValue(payload.Get("timestamp")); ok {
			sum.StartedAt = v
		}

	case "response_item":
		if stringField(payload, "type") != "message" {
			return parts
		}
		for _, text := range contentTexts(payload.Get("content")) {
			parts = append(parts, strings.ToLower(text))
		}

	case "event_msg":
		if stringField(payload, "type") != "user_message" {
			return parts
		}
		if v, ok := stringValue(payload.Get("message")); ok {
			parts = append(parts, strings.ToLower(v))
		}
	}
	return parts
}

// contentTexts returns the text of each content item, taken from the first
// present key among text, input_text and output_text when it is a string.
func contentTexts(content gjson.Result) []string {
	if !content.IsArray() {
		return nil
	}
	var out []string
	content.ForEach(func(_, item gjson.Result) bool {
		for _, key := range [...]string{"text", "input_text", "output_text"} {
			v := item.Get(key)
			if !v.Exists() {
				continue
			}
			if s, ok := stringValue(v); ok {
				out = append(out, s)
			}
			break
		}
		return true
	})
	return out
}

func stringValue(r gjson.Result) (string, bool) {
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func stringField(r gjson.Result, key string) string {
	s, _ := stringValue(r.Get(key))
	return s
}

func stringFieldOr(r gjson.Result, key, fallback string) string {
	if s, ok := stringValue(r.Get(key)); ok {
		return s
	}
	return fallback
}
