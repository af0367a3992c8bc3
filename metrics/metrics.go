// Package metrics computes per-node source metrics from parsed syntax
// trees: line counts, comment counts, import/class/function counts,
// cyclomatic complexity and parameter counts, collected per file root,
// class and function node.
package metrics

import (
	"sort"
	"strconv"
)

// DefaultKey is the report key for a plain (non-history) run.
const DefaultKey = "default"

// Block is the metric record for a single syntax node (file root, class,
// or function).
type Block struct {
	Language string `json:"language"`
	FilePath string `json:"file_path"`
	StartRow uint   `json:"start_row"` // 1-indexed
	StartCol uint   `json:"start_col"` // 1-indexed
	EndRow   uint   `json:"end_row"`
	EndCol   uint   `json:"end_col"`
	NodeName string `json:"node_name"`
	NodeType string `json:"node_type"`

	// IsBroken marks nodes whose subtree contains a syntax error or a
	// missing node, not descending into nested definitions.
	IsBroken bool `json:"is_broken"`

	ALOC  uint `json:"aloc"`  // actual lines of code (line span)
	ELOC  uint `json:"eloc"`  // empty lines within the span
	CLOC  uint `json:"cloc"`  // comment nodes
	DCLOC uint `json:"dcloc"` // doc comment nodes
	NOI   uint `json:"noi"`   // imports
	NOC   uint `json:"noc"`   // classes
	NOM   uint `json:"nom"`   // functions and methods
	CC    uint `json:"cc"`    // cyclomatic complexity

	// PC is the parameter count for function nodes; -1 marks variadic
	// parameter lists, 0 is used for non-function nodes.
	PC int `json:"pc"`
}

// TableHeader is the fixed column order for tabular output.
var TableHeader = []string{
	"language", "file_path",
	"start_row", "start_col", "end_row", "end_col",
	"node_name", "node_type",
	"is_broken",
	"aloc", "eloc", "cloc", "dcloc",
	"noi", "noc", "nom", "cc", "pc",
}

// Row renders the block in TableHeader column order.
func (b Block) Row() []string {
	return []string{
		b.Language,
		b.FilePath,
		strconv.FormatUint(uint64(b.StartRow), 10),
		strconv.FormatUint(uint64(b.StartCol), 10),
		strconv.FormatUint(uint64(b.EndRow), 10),
		strconv.FormatUint(uint64(b.EndCol), 10),
		b.NodeName,
		b.NodeType,
		strconv.FormatBool(b.IsBroken),
		strconv.FormatUint(uint64(b.ALOC), 10),
		strconv.FormatUint(uint64(b.ELOC), 10),
		strconv.FormatUint(uint64(b.CLOC), 10),
		strconv.FormatUint(uint64(b.DCLOC), 10),
		strconv.FormatUint(uint64(b.NOI), 10),
		strconv.FormatUint(uint64(b.NOC), 10),
		strconv.FormatUint(uint64(b.NOM), 10),
		strconv.FormatUint(uint64(b.CC), 10),
		strconv.Itoa(b.PC),
	}
}

// Report collects metric blocks keyed by revision: DefaultKey for a plain
// run, the commit hash for history runs.
type Report struct {
	Metrics map[string][]Block `json:"metrics"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Metrics: make(map[string][]Block)}
}

// Add appends blocks under the given key.
func (r *Report) Add(key string, blocks []Block) {
	r.Metrics[key] = append(r.Metrics[key], blocks...)
}

// AddDefault appends blocks under DefaultKey.
func (r *Report) AddDefault(blocks []Block) {
	r.Add(DefaultKey, blocks)
}

// Get returns the blocks for a key.
func (r *Report) Get(key string) []Block {
	return r.Metrics[key]
}

// Keys returns all report keys in sorted order.
func (r *Report) Keys() []string {
	keys := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table renders the blocks for a key as rows prefixed with TableHeader.
// An empty key selects DefaultKey when present, otherwise the first key
// in sorted order.
func (r *Report) Table(key string) [][]string {
	table := [][]string{TableHeader}

	if key == "" {
		if _, ok := r.Metrics[DefaultKey]; ok {
			key = DefaultKey
		} else if keys := r.Keys(); len(keys) > 0 {
			key = keys[0]
		}
	}

	for _, block := range r.Metrics[key] {
		table = append(table, block.Row())
	}
	return table
}
