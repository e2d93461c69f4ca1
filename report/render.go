package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultTabWidth is how many columns a tab occupies in rendered snippets
// unless the Source says otherwise.
const DefaultTabWidth = 4

// Source is a named source buffer. Diagnostic offsets index into Text.
type Source struct {
	Name     string
	Text     []byte
	TabWidth int

	lineStarts []int
}

// NewSource wraps text read from name.
func NewSource(name string, text []byte) *Source {
	return &Source{Name: name, Text: text, TabWidth: DefaultTabWidth}
}

func (s *Source) tabWidth() int {
	if s.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return s.TabWidth
}

func (s *Source) index() {
	if s.lineStarts != nil {
		return
	}
	s.lineStarts = []int{0}
	for i, c := range s.Text {
		if c == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
}

func (s *Source) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s.Text) {
		return len(s.Text)
	}
	return offset
}

// Position maps a byte offset to a 1-based line and column. Tabs before
// the offset count as TabWidth columns.
func (s *Source) Position(offset int) (line, col int) {
	s.index()
	offset = s.clamp(offset)
	line = sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	})
	start := s.lineStarts[line-1]
	col = 1
	for i := start; i < offset; i++ {
		if s.Text[i] == '\t' {
			col += s.tabWidth()
		} else {
			col++
		}
	}
	return line, col
}

// Line returns the text of the 1-based line without its terminator.
func (s *Source) Line(line int) string {
	s.index()
	if line < 1 || line > len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[line-1]
	end := len(s.Text)
	if line < len(s.lineStarts) {
		end = s.lineStarts[line] - 1
	}
	return strings.TrimRight(string(s.Text[start:end]), "\r")
}

type styles struct {
	location lipgloss.Style
	err      lipgloss.Style
	warning  lipgloss.Style
	note     lipgloss.Style
	caret    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		location: r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		err:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warning:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		note:     r.NewStyle().Bold(true),
		caret:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Printer renders diagnostics with a caret-annotated source snippet.
type Printer struct {
	w      io.Writer
	src    *Source
	color  bool
	styles styles
}

// NewPrinter renders to w. When color is false no escape sequences are
// written. When true, lipgloss still drops them if w is not a terminal.
func NewPrinter(w io.Writer, src *Source, color bool) *Printer {
	p := &Printer{w: w, src: src, color: color}
	if color {
		p.styles = newStyles(w)
	}
	return p
}

func (p *Printer) paint(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

func (p *Printer) severityStyle(s Severity) lipgloss.Style {
	switch s {
	case SeverityError:
		return p.styles.err
	case SeverityWarning:
		return p.styles.warning
	default:
		return p.styles.note
	}
}

func isWordByte(c byte) bool {
	return c == '.' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Print writes one diagnostic.
func (p *Printer) Print(d Diagnostic) {
	line, col := p.src.Position(d.Pos)
	fmt.Fprintf(p.w, "%s %s: %s\n",
		p.paint(p.styles.location, fmt.Sprintf("%s:%d:%d", p.src.Name, line, col)),
		p.paint(p.severityStyle(d.Severity), d.Severity.String()),
		d.Message)

	prefix := fmt.Sprintf(" %d | ", line)
	text := strings.ReplaceAll(p.src.Line(line), "\t", strings.Repeat(" ", p.src.tabWidth()))
	fmt.Fprintf(p.w, "%s%s\n", prefix, text)

	underline := "^"
	for i := p.src.clamp(d.Pos) + 1; i < len(p.src.Text) && isWordByte(p.src.Text[i]); i++ {
		underline += "~"
	}
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(" ", len(prefix)+col-1), p.paint(p.styles.caret, underline))
}

// PrintAll writes every diagnostic in order.
func (p *Printer) PrintAll(diags []Diagnostic) {
	for _, d := range diags {
		p.Print(d)
	}
}
