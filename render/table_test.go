package render

import (
	"bytes"
	"strings"
	"testing"

	"codestats/metrics"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, [][]string{
		{"language", "node_name", "cc"},
		{"Python", "greet", "1"},
		{"Python", "add_numbers", "1"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Python") {
		t.Errorf("row = %q", lines[1])
	}
	// Columns are aligned: "cc" starts at the same offset everywhere
	if strings.Index(lines[1], "1") != strings.Index(lines[2], "1") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestSummary(t *testing.T) {
	blocks := []metrics.Block{
		{Language: "Python", NodeType: "module", NOC: 1, NOM: 3, ALOC: 40},
		{Language: "Python", NodeType: "class_definition", NOM: 2},
		{Language: "Python", NodeType: "function_definition", IsBroken: true},
		{Language: "Java", NodeType: "program", NOC: 1, NOM: 2, ALOC: 20},
	}

	var buf bytes.Buffer
	Summary(&buf, blocks)
	out := buf.String()

	if !strings.Contains(out, "Python") || !strings.Contains(out, "Java") {
		t.Errorf("missing languages:\n%s", out)
	}
	if !strings.Contains(out, "1 files, 1 classes, 3 functions, 40 lines") {
		t.Errorf("missing python totals:\n%s", out)
	}
	if !strings.Contains(out, "1 nodes with syntax errors") {
		t.Errorf("missing broken count:\n%s", out)
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, nil)

	if !strings.Contains(buf.String(), "No source files found") {
		t.Errorf("output = %q", buf.String())
	}
}
