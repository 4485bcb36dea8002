package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows under a header, padding every column to its widest cell.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.noColor = opts.NoColor
	}
	return t
}

// AddRow adds a row to the table. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table. A table without headers renders nothing.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && width(cell) > widths[i] {
				widths[i] = width(cell)
			}
		}
	}

	header := paint(t.noColor, color.Bold, color.FgCyan)
	t.line(widths, t.headers, func(s string) string { return header.Sprint(s) })

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	gray := paint(t.noColor, color.FgHiBlack)
	t.line(widths, rule, func(s string) string { return gray.Sprint(s) })

	for _, row := range t.rows {
		t.line(widths, row, nil)
	}
}

func (t *Table) line(widths []int, cells []string, style func(string) string) {
	n := len(cells)
	if n > len(widths) {
		n = len(widths)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		cell := cells[i]
		if i < n-1 {
			cell = padRight(cell, widths[i])
		}
		if style != nil {
			cell = style(cell)
		}
		parts = append(parts, cell)
	}
	fmt.Fprintln(t.writer, strings.Join(parts, "  "))
}

// width counts runes so symbols such as ✓ occupy one column.
func width(s string) int {
	return utf8.RuneCountInString(s)
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	longest := 0
	for _, k := range t.keys {
		if width(k) > longest {
			longest = width(k)
		}
	}

	cyan := paint(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		cyan.Fprint(t.writer, padRight(k+":", longest+1))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// List renders bulleted or numbered items
type List struct {
	writer   io.Writer
	items    []string
	numbered bool
	noColor  bool
}

// ListOptions configures list behavior
type ListOptions struct {
	Numbered bool
	NoColor  bool
}

// NewList creates a new list
func NewList(w io.Writer, opts ListOptions) *List {
	return &List{writer: w, numbered: opts.Numbered, noColor: opts.NoColor}
}

// AddItem adds an item to the list
func (l *List) AddItem(item string) {
	l.items = append(l.items, item)
}

// Render renders the list
func (l *List) Render() {
	cyan := paint(l.noColor, color.FgCyan)
	for i, item := range l.items {
		if l.numbered {
			cyan.Fprintf(l.writer, "%d. ", i+1)
		} else {
			cyan.Fprint(l.writer, "• ")
		}
		fmt.Fprintln(l.writer, item)
	}
}
