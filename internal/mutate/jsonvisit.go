package mutate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// visitor is called for each member of every object reached while walking a
// decoded JSON value (map[string]any, []any, string, json.Number, bool or
// nil). It returns the member's new value and whether to walk into it.
type visitor func(key string, value any) (any, bool)

func walkJSON(v any, visit visitor) any {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			repl, descend := visit(key, child)
			if descend {
				repl = walkJSON(repl, visit)
			}
			node[key] = repl
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = walkJSON(child, visit)
		}
		return node
	}
	return v
}

// replaceString sets every string-valued member named key to value, at any
// depth. Members of other types are walked into instead.
func replaceString(key, value string) visitor {
	return func(k string, v any) (any, bool) {
		if k == key {
			if _, ok := v.(string); ok {
				return value, false
			}
		}
		return v, true
	}
}

func decodeRecord(line []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func encodeRecord(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// rewriteLines decodes each non-blank line, applies edit, and re-encodes it.
// Blank lines are kept as empty lines. Any line that is not JSON fails the
// whole rewrite.
func rewriteLines(data []byte, edit func(rec any) any) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data) + 1024)

	lines := bytes.Split(data, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	for i, raw := range lines {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			out.WriteByte('\n')
			continue
		}
		rec, err := decodeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", i+1, err)
		}
		if err := encodeRecord(&out, edit(rec)); err != nil {
			return nil, fmt.Errorf("encode line %d: %w", i+1, err)
		}
	}
	return out.Bytes(), nil
}

// setSessionMeta overwrites payload fields of a session_meta record.
func setSessionMeta(rec any, fields map[string]string) any {
	obj, ok := rec.(map[string]any)
	if !ok || obj["type"] != "session_meta" {
		return rec
	}
	payload, ok := obj["payload"].(map[string]any)
	if !ok {
		return rec
	}
	for k, v := range fields {
		payload[k] = v
	}
	return rec
}
