package preview

import "strings"

// Pos addresses a character in the rendered preview lines.
type Pos struct {
	Row int
	Col int
}

func (p Pos) before(o Pos) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Col <= o.Col)
}

// ClampPos limits p to an existing row and character of lines.
func ClampPos(lines []string, p Pos) Pos {
	if len(lines) == 0 {
		return Pos{}
	}
	row := clampInt(p.Row, 0, len(lines)-1)
	n := len([]rune(lines[row]))
	col := 0
	if n > 0 {
		col = clampInt(p.Col, 0, n-1)
	}
	return Pos{Row: row, Col: col}
}

// SelectedText returns the text between a and b inclusive, in either order.
// Columns are character indices.
func SelectedText(lines []string, a, b Pos) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	beg, fin := ClampPos(lines, a), ClampPos(lines, b)
	if !beg.before(fin) {
		beg, fin = fin, beg
	}
	if beg.Row == fin.Row {
		return sliceRunes(lines[beg.Row], beg.Col, fin.Col+1), true
	}
	out := make([]string, 0, fin.Row-beg.Row+1)
	out = append(out, sliceRunes(lines[beg.Row], beg.Col, len([]rune(lines[beg.Row]))))
	out = append(out, lines[beg.Row+1:fin.Row]...)
	out = append(out, sliceRunes(lines[fin.Row], 0, fin.Col+1))
	return strings.Join(out, "\n"), true
}

func sliceRunes(s string, start, end int) string {
	r := []rune(s)
	start = clampInt(start, 0, len(r))
	end = clampInt(end, start, len(r))
	return string(r[start:end])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
