package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExportDOT writes the graph in Graphviz DOT format. Node ordering is
// deterministic so exports are diffable.
func (g *DependencyGraph) ExportDOT(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	index := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		index[NodeID(id)] = i
	}

	var sb strings.Builder
	sb.WriteString("digraph {\n")

	for i, id := range ids {
		node := g.Nodes[NodeID(id)]
		fmt.Fprintf(&sb, "    %d [ label = %q ]\n", i, node.Label())
	}

	for _, edge := range g.Edges {
		from, okFrom := index[edge.From]
		to, okTo := index[edge.To]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&sb, "    %d -> %d [ ]\n", from, to)
	}

	sb.WriteString("}\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write dot file: %w", err)
	}
	return nil
}
