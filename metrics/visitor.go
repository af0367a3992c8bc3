package metrics

import (
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"codestats/scanner"
)

// FromFile generates metric blocks for a parsed file: one for the file
// root, then one per class definition and one per function/method
// definition found anywhere in the file.
func FromFile(pf *scanner.ParsedFile, cfg *scanner.LanguageConfig) []Block {
	v := &visitor{
		lang:    pf.Language,
		display: scanner.DisplayName(pf.Language),
		path:    pf.Path,
		source:  pf.Source,
		query:   cfg.Query,
	}

	root := pf.Tree.RootNode()
	rootCaps := v.collect(root)

	blocks := make([]Block, 0, 1+len(rootCaps.classes)+len(rootCaps.functions))

	rb := v.newBlock(root, filepath.Base(pf.Path), root.Kind())
	v.fill(&rb, root, rootCaps, 0, 0)
	blocks = append(blocks, rb)

	for i := range rootCaps.classes {
		c := &rootCaps.classes[i]
		caps := v.collect(&c.node)
		b := v.newBlock(&c.node, c.name, c.node.Kind())
		// Exclude the class itself from its own class count
		v.fill(&b, &c.node, caps, 1, 0)
		blocks = append(blocks, b)
	}

	for i := range rootCaps.functions {
		fn := &rootCaps.functions[i]
		caps := v.collect(&fn.node)
		b := v.newBlock(&fn.node, fn.name, fn.node.Kind())
		// Exclude the function itself from its own function count
		v.fill(&b, &fn.node, caps, 0, 1)
		b.PC = countParams(fn.params)
		blocks = append(blocks, b)
	}

	return blocks
}

type visitor struct {
	lang    string
	display string
	path    string
	source  []byte
	query   *tree_sitter.Query
}

type classCapture struct {
	node tree_sitter.Node
	name string
}

type funcCapture struct {
	node   tree_sitter.Node
	name   string
	params string
}

// captures groups the base-query matches within one node's subtree.
type captures struct {
	comments  []tree_sitter.Node
	imports   []tree_sitter.Node
	classes   []classCapture
	functions []funcCapture
}

// collect runs the language's base query over the subtree rooted at node.
// Capture nodes are copied out because the matches iterator reuses its
// storage between matches.
func (v *visitor) collect(node *tree_sitter.Node) captures {
	var caps captures

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(v.query, node, v.source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		byName := make(map[string]tree_sitter.Node, len(match.Captures))
		for _, capture := range match.Captures {
			byName[v.query.CaptureNames()[capture.Index]] = capture.Node
		}

		if n, ok := byName["class.def"]; ok {
			name := byName["class.name"]
			caps.classes = append(caps.classes, classCapture{node: n, name: v.text(&name)})
			continue
		}
		if n, ok := byName["func.def"]; ok {
			name := byName["func.name"]
			params := byName["func.params"]
			caps.functions = append(caps.functions, funcCapture{
				node:   n,
				name:   v.text(&name),
				params: v.text(&params),
			})
			continue
		}
		if n, ok := byName["comment"]; ok {
			caps.comments = append(caps.comments, n)
			continue
		}
		if n, ok := byName["import"]; ok {
			caps.imports = append(caps.imports, n)
		}
	}

	return caps
}

// newBlock initializes a block with node identity and position.
func (v *visitor) newBlock(node *tree_sitter.Node, name, nodeType string) Block {
	start := node.StartPosition()
	end := node.EndPosition()

	return Block{
		Language: v.display,
		FilePath: v.path,
		NodeName: name,
		NodeType: nodeType,
		StartRow: uint(start.Row) + 1,
		StartCol: uint(start.Column) + 1,
		EndRow:   uint(end.Row) + 1,
		EndCol:   uint(end.Column) + 1,
		ALOC:     uint(end.Row-start.Row) + 1,
	}
}

// fill computes the counted metrics for a block. selfClasses/selfFuncs are
// subtracted from the class/function counts so a definition does not count
// itself.
func (v *visitor) fill(b *Block, node *tree_sitter.Node, caps captures, selfClasses, selfFuncs uint) {
	b.IsBroken = v.checkBroken(node)
	b.ELOC = v.countEmptyLines(node)
	b.CLOC, b.DCLOC = v.countComments(caps.comments)
	b.NOI = uint(len(caps.imports))
	b.NOC = uint(len(caps.classes)) - selfClasses
	b.NOM = uint(len(caps.functions)) - selfFuncs
	b.CC = v.countDecisionPoints(node) + 1
}

// checkBroken reports whether the subtree contains an ERROR or missing
// node, without descending into nested class/function definitions.
func (v *visitor) checkBroken(node *tree_sitter.Node) bool {
	if node.Kind() == "ERROR" || node.IsMissing() {
		return true
	}

	skip := definitionKinds[v.lang]
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if skip[child.Kind()] {
			continue
		}
		if v.checkBroken(child) {
			return true
		}
	}
	return false
}

// countEmptyLines counts blank lines within the node's source span.
func (v *visitor) countEmptyLines(node *tree_sitter.Node) uint {
	text := string(v.source[node.StartByte():node.EndByte()])
	// A trailing newline is a line terminator, not an extra blank line
	text = strings.TrimSuffix(text, "\n")

	var empty uint
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			empty++
		}
	}
	return empty
}

// countComments returns the total comment node count and the doc comment
// count. Python doc comments are triple-quoted strings; Java doc comments
// start with "/**".
func (v *visitor) countComments(comments []tree_sitter.Node) (uint, uint) {
	var total, doc uint
	for i := range comments {
		total++

		text := v.text(&comments[i])
		switch v.lang {
		case "python":
			if strings.HasPrefix(text, `"""`) || strings.HasPrefix(text, "'''") {
				doc++
			}
		case "java":
			if strings.HasPrefix(text, "/**") {
				doc++
			}
		}
	}
	return total, doc
}

// countDecisionPoints counts decision-point nodes in the whole subtree.
func (v *visitor) countDecisionPoints(node *tree_sitter.Node) uint {
	decisions := decisionKinds[v.lang]

	var count uint
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if decisions[n.Kind()] {
			count++
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return count
}

func (v *visitor) text(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Utf8Text(v.source)
}

// countParams counts the number of parameters from a parameter list string.
// Returns -1 for variadic parameter lists, 0 for no params.
func countParams(params string) int {
	params = strings.TrimSpace(params)
	if params == "" || params == "()" {
		return 0
	}

	// Remove outer parentheses if present
	if strings.HasPrefix(params, "(") && strings.HasSuffix(params, ")") {
		params = params[1 : len(params)-1]
	}
	params = strings.TrimSpace(params)
	if params == "" {
		return 0
	}

	// Check for variadic indicators
	if strings.Contains(params, "...") || strings.Contains(params, "*args") || strings.Contains(params, "**kwargs") {
		return -1
	}

	// Count parameters by tracking bracket depth to avoid counting commas
	// inside nested types like Map<String, Integer>
	count := 1
	depth := 0
	for _, ch := range params {
		switch ch {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}

	return count
}
