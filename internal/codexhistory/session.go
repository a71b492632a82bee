package codexhistory

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// InvalidEvent stands in for a line that is not a JSON record.
const InvalidEvent = "<invalid event>"

// SplitLines splits file content into lines, dropping a trailing newline and
// carriage returns.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}

// ExtractChatTurns returns the user/assistant messages recorded as
// response_item records, in file order. The developer role is reported as
// user. Sessions with no such records fall back to event_msg user messages.
func ExtractChatTurns(lines []string) []ChatTurn {
	var turns []ChatTurn
	for _, line := range lines {
		rec, ok := parseRecord(line)
		if !ok || stringField(rec, "type") != "response_item" {
			continue
		}
		payload := rec.Get("payload")
		if stringField(payload, "type") != "message" {
			continue
		}

		role := stringFieldOr(payload, "role", "unknown")
		if role == "developer" {
			role = "user"
		}

		var texts []string
		for _, text := range contentTexts(payload.Get("content")) {
			if strings.TrimSpace(text) != "" {
				texts = append(texts, text)
			}
		}
		if len(texts) == 0 {
			continue
		}

		turns = append(turns, ChatTurn{
			Role:      role,
			Timestamp: stringFieldOr(rec, "timestamp", "-"),
			Text:      strings.Join(texts, "\n"),
		})
	}
	if len(turns) > 0 {
		return turns
	}

	for _, line := range lines {
		rec, ok := parseRecord(line)
		if !ok || stringField(rec, "type") != "event_msg" {
			continue
		}
		payload := rec.Get("payload")
		if stringField(payload, "type") != "user_message" {
			continue
		}
		text, ok := stringValue(payload.Get("message"))
		if !ok {
			continue
		}
		turns = append(turns, ChatTurn{
			Role:      "user",
			Timestamp: stringFieldOr(rec, "timestamp", "-"),
			Text:      text,
		})
	}
	return turns
}

// SummarizeEvents returns one summary per non-empty line.
func SummarizeEvents(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, SummarizeEventLine(line))
	}
	return out
}

// SummarizeEventLine renders a record as "[timestamp] type/subtype".
func SummarizeEventLine(line string) string {
	rec, ok := parseRecord(line)
	if !ok {
		return InvalidEvent
	}
	ts := stringFieldOr(rec, "timestamp", "-")
	typ := stringFieldOr(rec, "type", "unknown")
	payload := rec.Get("payload")

	switch typ {
	case "response_item":
		ptype := stringFieldOr(payload, "type", "?")
		if ptype == "message" {
			return fmt.Sprintf("[%s] response_item/message role=%s", ts, stringFieldOr(payload, "role", "?"))
		}
		return fmt.Sprintf("[%s] response_item/%s", ts, ptype)
	case "event_msg":
		return fmt.Sprintf("[%s] event_msg/%s", ts, stringFieldOr(payload, "type", "?"))
	}
	return fmt.Sprintf("[%s] %s", ts, typ)
}

func parseRecord(line string) (gjson.Result, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !gjson.Valid(line) {
		return gjson.Result{}, false
	}
	return gjson.Parse(line), true
}
