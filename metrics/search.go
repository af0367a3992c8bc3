package metrics

import "strings"

// SymbolQuery represents the filters for symbol search.
type SymbolQuery struct {
	Name string // Substring match (case-insensitive)
	Kind string // "function", "class", "file", "all"
	File string // Filter by file path substring (optional)
}

// SymbolMatch represents a found symbol.
type SymbolMatch struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "function", "class", or "file"
	NodeType string `json:"node_type"`
	Language string `json:"language"`
	File     string `json:"file"`
	Line     uint   `json:"line"`
}

// classKinds and functionKinds classify grammar node types into symbol kinds.
var (
	classKinds = map[string]bool{
		"class_definition":  true,
		"class_declaration": true,
	}
	functionKinds = map[string]bool{
		"function_definition":     true,
		"method_declaration":      true,
		"constructor_declaration": true,
	}
)

// SymbolKind returns the symbol kind for a grammar node type.
func SymbolKind(nodeType string) string {
	switch {
	case classKinds[nodeType]:
		return "class"
	case functionKinds[nodeType]:
		return "function"
	default:
		return "file"
	}
}

// SearchBlocks searches metric blocks for symbols matching the query.
func SearchBlocks(blocks []Block, query SymbolQuery) []SymbolMatch {
	var matches []SymbolMatch
	searchName := strings.ToLower(query.Name)

	for _, block := range blocks {
		if query.File != "" && !strings.Contains(block.FilePath, query.File) {
			continue
		}

		kind := SymbolKind(block.NodeType)
		if query.Kind != "" && query.Kind != "all" && query.Kind != kind {
			continue
		}

		if searchName != "" && !strings.Contains(strings.ToLower(block.NodeName), searchName) {
			continue
		}

		matches = append(matches, SymbolMatch{
			Name:     block.NodeName,
			Kind:     kind,
			NodeType: block.NodeType,
			Language: block.Language,
			File:     block.FilePath,
			Line:     block.StartRow,
		})
	}

	return matches
}
