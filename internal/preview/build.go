// Package preview turns a session file into the lines shown in the preview
// pane, together with the metadata needed for folding, tinting and text
// selection.
package preview

import (
	"fmt"
	"strings"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

// MaxEvents caps the number of event lines rendered in Events mode.
const MaxEvents = 220

type Mode int

const (
	ModeChat Mode = iota
	ModeEvents
)

func (m Mode) String() string {
	if m == ModeEvents {
		return "events"
	}
	return "chat"
}

// ParseMode maps "events" to ModeEvents and anything else to ModeChat.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "events") {
		return ModeEvents
	}
	return ModeChat
}

type Tone int

const (
	ToneUser Tone = iota
	ToneAssistant
)

const (
	markerFolded   = "▸"
	markerExpanded = "▾"
	bodyIndent     = "   "
)

type ToneRow struct {
	Row  int
	Tone Tone
}

type HeaderRow struct {
	Row  int
	Turn int
	Role string
}

// BlockRange is the inclusive row span of one turn.
type BlockRange struct {
	Turn  int
	Start int
	End   int
}

// Data is a rendered preview.
type Data struct {
	Lines       []string
	ToneRows    []ToneRow
	HeaderRows  []HeaderRow
	BlockRanges []BlockRange
	// Turns is the number of chat turns; zero in Events mode.
	Turns int
}

// HeaderForTurn returns the row of a turn's header line.
func (d Data) HeaderForTurn(turn int) (int, bool) {
	for _, h := range d.HeaderRows {
		if h.Turn == turn {
			return h.Row, true
		}
	}
	return 0, false
}

// TurnAtRow returns the turn whose header is at row.
func (d Data) TurnAtRow(row int) (int, bool) {
	for _, h := range d.HeaderRows {
		if h.Row == row {
			return h.Turn, true
		}
	}
	return 0, false
}

// TurnContaining returns the turn of the nearest header at or above row.
func (d Data) TurnContaining(row int) (int, bool) {
	best, found := -1, false
	for _, h := range d.HeaderRows {
		if h.Row <= row && h.Row > best {
			best = h.Row
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return d.TurnAtRow(best)
}

// BlockForTurn returns the row range of a turn.
func (d Data) BlockForTurn(turn int) (BlockRange, bool) {
	for _, b := range d.BlockRanges {
		if b.Turn == turn {
			return b, true
		}
	}
	return BlockRange{}, false
}

// ToneAt returns the tone of a row, if it is tinted.
func (d Data) ToneAt(row int) (Tone, bool) {
	for _, t := range d.ToneRows {
		if t.Row == row {
			return t.Tone, true
		}
	}
	return 0, false
}

// Build renders sess through the cache. Only reading the session can fail.
func Build(cache *Cache, sess codexhistory.SessionSummary, mode Mode, width int, folded map[int]bool) (Data, error) {
	src, err := cache.Load(sess.Path)
	if err != nil {
		return Data{}, err
	}
	return Render(sess, src, mode, width, folded), nil
}

// Render lays out an already parsed source at the given inner width.
func Render(sess codexhistory.SessionSummary, src *Source, mode Mode, width int, folded map[int]bool) Data {
	b := &builder{}
	b.add("Session " + sess.ID)
	b.add("Path    " + sess.Path)
	b.add("Cwd     " + sess.Cwd)
	b.add("Started " + sess.StartedAt)
	b.add("")

	if mode == ModeEvents {
		b.renderEvents(src.Events)
		return b.data
	}
	b.renderChat(src.Turns, width, folded)
	return b.data
}

type builder struct {
	data Data
}

func (b *builder) add(line string) int {
	b.data.Lines = append(b.data.Lines, line)
	return len(b.data.Lines) - 1
}

func (b *builder) addToned(line string, tone Tone) int {
	row := b.add(line)
	b.data.ToneRows = append(b.data.ToneRows, ToneRow{Row: row, Tone: tone})
	return row
}

func (b *builder) renderEvents(events []string) {
	b.add("Event Stream")
	shown := events
	if len(events) > MaxEvents {
		shown = events[len(events)-MaxEvents:]
		b.add(fmt.Sprintf("... showing last %d of %d events ...", MaxEvents, len(events)))
		b.add("")
	}
	for _, ev := range shown {
		b.add(ev)
	}
}

func (b *builder) renderChat(turns []codexhistory.ChatTurn, width int, folded map[int]bool) {
	b.add("Conversation")
	if len(turns) == 0 {
		b.add("No user/assistant chat messages found in this session.")
		return
	}

	users, assistants := 0, 0
	for _, t := range turns {
		switch t.Role {
		case "user":
			users++
		case "assistant":
			assistants++
		}
	}
	b.add(fmt.Sprintf("Turns: user=%d assistant=%d total=%d", users, assistants, len(turns)))
	if assistants == 0 {
		b.add("Warning: no assistant messages detected in this session.")
	}
	b.add("")

	b.data.Turns = len(turns)
	for i, turn := range turns {
		tone := ToneAssistant
		if turn.Role == "user" {
			tone = ToneUser
		}
		isFolded := folded[i]
		marker := markerExpanded
		if isFolded {
			marker = markerFolded
		}

		start := b.addToned("", tone)
		header := b.addToned(marker+"  "+strings.ToUpper(turn.Role)+"  "+turn.Timestamp, tone)
		b.data.HeaderRows = append(b.data.HeaderRows, HeaderRow{Row: header, Turn: i, Role: turn.Role})

		if !isFolded {
			for _, ln := range RenderMarkdown(turn.Text, max(width-len(bodyIndent), 0)) {
				b.addToned(bodyIndent+ln, tone)
			}
		}
		end := b.addToned("", tone)
		b.data.BlockRanges = append(b.data.BlockRanges, BlockRange{Turn: i, Start: start, End: end})

		if i+1 < len(turns) {
			if tone == ToneUser {
				b.add("")
			} else {
				b.add(strings.Repeat("─", max(width-1, 1)))
			}
		}
	}
}
