package style

import (
	"strings"
	"unicode/utf8"
)

// Column defines a table column.
type Column struct {
	Name  string
	Width int
}

// Table renders left-aligned columns with a styled header, used by the
// pool listing. Cell values may carry ANSI styling; widths are computed
// on the plain text.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(values ...string) *Table {
	t.rows = append(t.rows, values)
	return t
}

// Render returns the formatted table, one trailing newline per line.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("  ")
	total := 0
	for i, col := range t.columns {
		sb.WriteString(cell(Bold.Render(col.Name), col.Name, col.Width))
		total += col.Width
		if i < len(t.columns)-1 {
			sb.WriteString(" ")
			total++
		}
	}
	sb.WriteString("\n  ")
	sb.WriteString(Dim.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		sb.WriteString("  ")
		for i, col := range t.columns {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			plain := stripAnsi(val)
			if runes := []rune(plain); len(runes) > col.Width {
				if col.Width > 3 {
					val = string(runes[:col.Width-3]) + "..."
				} else {
					val = string(runes[:col.Width])
				}
				plain = val
			}
			sb.WriteString(cell(val, plain, col.Width))
			if i < len(t.columns)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// cell pads styled to width using the plain text's rune count, so
// neither ANSI escapes nor multi-byte names skew alignment.
func cell(styled, plain string, width int) string {
	n := utf8.RuneCountInString(plain)
	if n >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-n)
}

// stripAnsi removes ANSI escape sequences.
func stripAnsi(s string) string {
	var out strings.Builder
	esc := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\x1b':
			esc = true
		case esc:
			if s[i] == 'm' {
				esc = false
			}
		default:
			out.WriteByte(s[i])
		}
	}
	return out.String()
}
