package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/project"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("8"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func field(label string, value any) string {
	return "  " + labelStyle.Render(label) + fmt.Sprint(value)
}

func printSummary(w io.Writer, res *result, out *project.Output, reports []string) {
	kb := res.kb
	name := kb.Name
	if name == "" {
		name = "(unnamed)"
	}

	lines := []string{
		titleStyle.Render("Keyboard: " + name),
	}
	if kb.Author != "" {
		lines = append(lines, field("Author", kb.Author))
	}
	lines = append(lines,
		field("Keys", kb.Len()),
		field("Rows", fmt.Sprintf("%d of %d", len(kb.Rows()), res.nets.MaxRows)),
		field("Columns", fmt.Sprintf("%d of %d", len(kb.Columns()), res.nets.MaxColumns)),
		field("Nets", res.nets.Len()),
		"",
		titleStyle.Render("Wrote:"),
	)
	for _, p := range append([]string{out.Schematic, out.Layout, out.Project, out.Netlist}, reports...) {
		lines = append(lines, "  "+pathStyle.Render(p))
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// matrixGrid draws one line per row with the legend of each key in its
// column. Keys sharing a cell are joined with "+".
func matrixGrid(kb *keyboard.Keyboard, columns int) string {
	const cellWidth = 6
	cell := lipgloss.NewStyle().Width(cellWidth)
	head := lipgloss.NewStyle().Width(cellWidth).Bold(true)

	var b strings.Builder
	b.WriteString(head.Render(""))
	for c := 0; c < columns; c++ {
		b.WriteString(head.Render(fmt.Sprintf("C%d", c)))
	}
	b.WriteString("\n")

	for _, row := range kb.Rows() {
		cells := make([][]string, columns)
		for _, k := range kb.Select(row.Keys) {
			if k.Column < columns {
				cells[k.Column] = append(cells[k.Column], legend(k))
			}
		}

		b.WriteString(head.Render(fmt.Sprintf("R%d", row.Index)))
		for _, c := range cells {
			if len(c) == 0 {
				b.WriteString(dimStyle.Width(cellWidth).Render("."))
				continue
			}
			b.WriteString(cell.Render(truncate(strings.Join(c, "+"), cellWidth-1)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func legend(k keyboard.Key) string {
	if l := strings.TrimSpace(strings.SplitN(k.Legend, "\n", 2)[0]); l != "" {
		return l
	}
	return fmt.Sprintf("K%d", k.Number)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
