package preview

import (
	"strings"
	"unicode/utf8"
)

// WrapText greedily wraps each line of text to width characters, breaking on
// whitespace and joining words with single spaces. Words longer than width are
// split into width-sized chunks. Widths are counted in characters, not cells.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var out []string
	for _, raw := range splitRawLines(text) {
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur strings.Builder
		curLen := 0
		for _, word := range words {
			wl := utf8.RuneCountInString(word)
			switch {
			case wl > width:
				if curLen > 0 {
					out = append(out, cur.String())
					cur.Reset()
					curLen = 0
				}
				out = append(out, chunkByWidth(word, width)...)
			case curLen == 0:
				cur.WriteString(word)
				curLen = wl
			case curLen+1+wl <= width:
				cur.WriteByte(' ')
				cur.WriteString(word)
				curLen += 1 + wl
			default:
				out = append(out, cur.String())
				cur.Reset()
				cur.WriteString(word)
				curLen = wl
			}
		}
		if curLen > 0 {
			out = append(out, cur.String())
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// chunkByWidth cuts s into pieces of at most width characters.
func chunkByWidth(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	var buf strings.Builder
	n := 0
	for _, r := range s {
		buf.WriteRune(r)
		n++
		if n >= width {
			out = append(out, buf.String())
			buf.Reset()
			n = 0
		}
	}
	if n > 0 {
		out = append(out, buf.String())
	}
	return out
}

func splitRawLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}
