// Package render prints metrics tables, summaries and progress to the
// terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"codestats/metrics"
)

// Table writes a metrics table with aligned columns.
func Table(w io.Writer, table [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range table {
		for i, col := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

// Summary prints per-language totals for a block list.
func Summary(w io.Writer, blocks []metrics.Block) {
	type totals struct {
		files     int
		classes   uint
		functions uint
		lines     uint
		broken    int
	}

	byLang := make(map[string]*totals)
	for _, b := range blocks {
		t := byLang[b.Language]
		if t == nil {
			t = &totals{}
			byLang[b.Language] = t
		}

		// Per-file stats come from the file root block
		switch b.NodeType {
		case "module", "program":
			t.files++
			t.classes += b.NOC
			t.functions += b.NOM
			t.lines += b.ALOC
		}
		if b.IsBroken {
			t.broken++
		}
	}

	if len(byLang) == 0 {
		fmt.Fprintln(w, "No source files found.")
		return
	}

	var langs []string
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Summary ===")
	for _, lang := range langs {
		t := byLang[lang]
		fmt.Fprintf(w, "  %-12s %d files, %d classes, %d functions, %d lines\n",
			lang, t.files, t.classes, t.functions, t.lines)
		if t.broken > 0 {
			fmt.Fprintf(w, "  %-12s %d nodes with syntax errors\n", "", t.broken)
		}
	}
}
