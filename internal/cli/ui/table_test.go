package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Kind", "fetch", "store"}, &TableOptions{NoColor: true})
	table.AddRow("retry", "✓", "~")
	table.AddRow("rate-limit", "✓", "✓")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Kind        fetch  store", lines[0])
	assert.Equal(t, "──────────  ─────  ─────", lines[1])
	assert.Equal(t, "retry       ✓      ~", lines[2])
	assert.Equal(t, "rate-limit  ✓      ✓", lines[3])
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, nil, nil).Render()
	assert.Empty(t, buf.String())

	NewTable(&buf, []string{"A"}, nil).Render()
	assert.Contains(t, buf.String(), "A")
}

func TestTable_ExtraCellsDropped(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})
	table.AddRow("1", "2", "3")
	table.Render()

	assert.NotContains(t, buf.String(), "3")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "✓ ", padRight("✓", 2))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Name", "research-digest")
	kv.AddRow("Skills", "3")
	kv.Render()

	assert.Equal(t, "Name:   research-digest\nSkills: 3\n", buf.String())
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	numbered := NewList(&buf, ListOptions{Numbered: true, NoColor: true})
	numbered.AddItem("fetch")
	numbered.AddItem("summarize")
	numbered.Render()
	assert.Equal(t, "1. fetch\n2. summarize\n", buf.String())

	buf.Reset()
	bullets := NewList(&buf, ListOptions{NoColor: true})
	bullets.AddItem("fetch")
	bullets.Render()
	assert.Equal(t, "• fetch\n", buf.String())
}
