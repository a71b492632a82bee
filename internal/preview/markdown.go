package preview

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const ruleMaxWidth = 48

var markdown = goldmark.New(goldmark.WithExtensions(
	extension.Strikethrough,
	extension.Table,
	extension.TaskList,
))

// mdLine is one logical output line before wrapping. The prefix (quote,
// indent and list marker) is kept apart so wrapped continuations can be
// aligned under it.
type mdLine struct {
	prefix string
	body   string
	code   bool
}

type listLevel struct {
	ordered bool
	next    int
}

type mdRenderer struct {
	src        []byte
	width      int
	lines      []mdLine
	prefix     string
	body       strings.Builder
	open       bool
	quoteDepth int
	lists      []listLevel
	cellIndex  int
}

// RenderMarkdown converts Markdown text into plain lines no wider than width
// characters. Code blocks keep their content verbatim behind a four-space
// indent and are hard-chunked instead of word-wrapped.
func RenderMarkdown(src string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	r := &mdRenderer{src: []byte(src), width: width}
	doc := markdown.Parser().Parse(text.NewReader(r.src))
	_ = ast.Walk(doc, r.visit)
	r.flush()
	for len(r.lines) > 0 && r.lines[len(r.lines)-1].isBlank() {
		r.lines = r.lines[:len(r.lines)-1]
	}
	return r.wrap()
}

func (l mdLine) isBlank() bool {
	return !l.code && l.prefix == "" && l.body == ""
}

func (r *mdRenderer) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.flush()
		if !entering {
			r.blank()
		}

	case *ast.Paragraph:
		if !entering {
			r.flush()
			r.blank()
		}

	case *ast.Blockquote:
		r.flush()
		if entering {
			r.quoteDepth++
		} else {
			r.quoteDepth--
			r.blank()
		}

	case *ast.List:
		r.flush()
		if entering {
			r.lists = append(r.lists, listLevel{ordered: node.IsOrdered(), next: node.Start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if len(r.lists) == 0 {
				r.blank()
			}
		}

	case *ast.ListItem:
		r.flush()
		if entering {
			r.startItem()
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.flush()
			r.codeLines(n.Lines())
			r.blank()
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			r.flush()
			r.lines = append(r.lines, mdLine{body: strings.Repeat("─", min(r.width, ruleMaxWidth))})
		}

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			r.write(textValue(node, r.src))
			if node.HardLineBreak() {
				r.flush()
			} else if node.SoftLineBreak() {
				r.write(" ")
			}
		}

	case *ast.String:
		if entering {
			r.write(string(node.Value))
		}

	case *ast.AutoLink:
		if entering {
			r.write(string(node.Label(r.src)))
		}
		return ast.WalkSkipChildren, nil

	case *east.TaskCheckBox:
		if entering {
			if node.IsChecked {
				r.write("[x] ")
			} else {
				r.write("[ ] ")
			}
		}

	case *east.Table:
		r.flush()
		if !entering {
			r.blank()
		}

	case *east.TableHeader, *east.TableRow:
		r.flush()
		r.cellIndex = 0

	case *east.TableCell:
		if entering {
			if r.cellIndex > 0 {
				r.write(" | ")
			}
			r.cellIndex++
		}
	}
	return ast.WalkContinue, nil
}

// textValue decodes backslash escapes and character references the same way
// goldmark's HTML writer does. Code span text is raw and left alone.
func textValue(node *ast.Text, src []byte) string {
	v := node.Segment.Value(src)
	if node.IsRaw() {
		return string(v)
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

func (r *mdRenderer) quotePrefix() string {
	return strings.Repeat("> ", r.quoteDepth)
}

func (r *mdRenderer) startItem() {
	var b strings.Builder
	b.WriteString(r.quotePrefix())
	if depth := len(r.lists); depth > 0 {
		b.WriteString(strings.Repeat("  ", depth-1))
		lvl := &r.lists[depth-1]
		if lvl.ordered {
			b.WriteString(strconv.Itoa(lvl.next))
			b.WriteString(". ")
			lvl.next++
		} else {
			b.WriteString("- ")
		}
	}
	r.prefix = b.String()
	r.open = true
}

func (r *mdRenderer) write(s string) {
	if !r.open {
		r.prefix = r.quotePrefix()
		r.open = true
	}
	r.body.WriteString(s)
}

func (r *mdRenderer) flush() {
	if !r.open {
		return
	}
	if r.prefix != "" || r.body.Len() > 0 {
		r.lines = append(r.lines, mdLine{prefix: r.prefix, body: r.body.String()})
	}
	r.prefix = ""
	r.body.Reset()
	r.open = false
}

func (r *mdRenderer) blank() {
	r.lines = append(r.lines, mdLine{})
}

func (r *mdRenderer) codeLines(segs *text.Segments) {
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		ln := strings.TrimRight(string(seg.Value(r.src)), "\r\n")
		r.lines = append(r.lines, mdLine{body: ln, code: true})
	}
}

func (r *mdRenderer) wrap() []string {
	var out []string
	for _, ln := range r.lines {
		switch {
		case ln.code:
			chunks := chunkByWidth(ln.body, max(r.width-4, 1))
			if len(chunks) == 0 {
				out = append(out, "    ")
				continue
			}
			for _, c := range chunks {
				out = append(out, "    "+c)
			}
		case ln.isBlank():
			out = append(out, "")
		default:
			body := strings.TrimSpace(ln.body)
			if body == "" {
				out = append(out, ln.prefix)
				continue
			}
			pw := utf8.RuneCountInString(ln.prefix)
			indent := strings.Repeat(" ", pw)
			for i, w := range WrapText(body, max(r.width-pw, 1)) {
				if i == 0 {
					out = append(out, ln.prefix+w)
				} else {
					out = append(out, indent+w)
				}
			}
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
