package analyze

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"codestats/graph"
	"codestats/scanner"
)

// graphKinds maps grammar node kinds to graph node kinds per language.
var graphKinds = map[string]map[string]graph.NodeKind{
	"python": {
		"class_definition":    graph.KindClass,
		"function_definition": graph.KindFunction,
	},
	"java": {
		"class_declaration":       graph.KindClass,
		"interface_declaration":   graph.KindClass,
		"enum_declaration":        graph.KindClass,
		"record_declaration":      graph.KindClass,
		"method_declaration":      graph.KindFunction,
		"constructor_declaration": graph.KindFunction,
	},
}

// buildGraph adds one file's entities to the dependency graph: a module
// node for the file itself linked to the project root, and class and
// function nodes each linked to their enclosing scope.
func (r *Runner) buildGraph(pf *scanner.ParsedFile, relPath string) {
	kinds := graphKinds[pf.Language]
	if kinds == nil {
		return
	}

	root := pf.Tree.RootNode()

	moduleID := graph.GenerateNodeID(relPath, root.Kind(), uint(root.StartByte()), uint(root.EndByte()))
	r.Graph.AddNode(&graph.Node{
		ID:          moduleID,
		Kind:        graph.KindModule,
		Name:        relPath,
		Path:        relPath,
		GrammarKind: root.Kind(),
		StartByte:   uint(root.StartByte()),
		EndByte:     uint(root.EndByte()),
	})
	r.Graph.AddEdge(moduleID, r.Graph.RootID())

	var walk func(node *tree_sitter.Node, parent graph.NodeID)
	walk = func(node *tree_sitter.Node, parent graph.NodeID) {
		enclosing := parent

		if kind, ok := kinds[node.Kind()]; ok {
			id := graph.GenerateNodeID(relPath, node.Kind(), uint(node.StartByte()), uint(node.EndByte()))
			r.Graph.AddNode(&graph.Node{
				ID:          id,
				Kind:        kind,
				Name:        entityName(node, pf.Source),
				Path:        relPath,
				GrammarKind: node.Kind(),
				StartByte:   uint(node.StartByte()),
				EndByte:     uint(node.EndByte()),
			})
			r.Graph.AddEdge(id, parent)
			enclosing = id
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), enclosing)
		}
	}

	walk(root, moduleID)
}

// entityName extracts the declared name of a definition node, falling
// back to the grammar kind for anonymous entities.
func entityName(node *tree_sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Utf8Text(source)
	}
	return node.Kind()
}
