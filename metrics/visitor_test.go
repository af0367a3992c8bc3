package metrics

import (
	"path/filepath"
	"testing"

	"codestats/scanner"
)

// pythonLoader returns a loader with the python grammar, skipping when
// no grammar library is installed.
func pythonLoader(t *testing.T) *scanner.GrammarLoader {
	t.Helper()

	loader := scanner.NewGrammarLoader()
	if !loader.HasGrammars() {
		t.Skip("no grammar directory available")
	}
	if err := loader.LoadLanguage("python"); err != nil {
		t.Skipf("python grammar not available: %v", err)
	}
	return loader
}

func TestFromFilePython(t *testing.T) {
	loader := pythonLoader(t)

	path := filepath.Join("..", "scanner", "testdata", "corpus", "python", "example.py")
	pf, err := loader.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if pf == nil {
		t.Fatal("ParseFile returned nil")
	}
	defer pf.Close()
	cfg := loader.Config("python")

	blocks := FromFile(pf, cfg)

	// 1 file root + 1 class + 7 functions/methods
	if len(blocks) != 9 {
		t.Fatalf("got %d blocks, want 9", len(blocks))
	}

	root := blocks[0]
	if root.NodeType != "module" {
		t.Errorf("root node_type = %q, want module", root.NodeType)
	}
	if root.NodeName != "example.py" {
		t.Errorf("root node_name = %q, want example.py", root.NodeName)
	}
	if root.NOI != 1 {
		t.Errorf("root NOI = %d, want 1", root.NOI)
	}
	if root.NOC != 1 {
		t.Errorf("root NOC = %d, want 1", root.NOC)
	}
	if root.NOM != 7 {
		t.Errorf("root NOM = %d, want 7", root.NOM)
	}
	// Two docstrings, the bare "tes" string and the "# Example usage" line
	if root.CLOC != 4 {
		t.Errorf("root CLOC = %d, want 4", root.CLOC)
	}
	if root.DCLOC != 2 {
		t.Errorf("root DCLOC = %d, want 2", root.DCLOC)
	}
	// One decision point: the __main__ guard
	if root.CC != 2 {
		t.Errorf("root CC = %d, want 2", root.CC)
	}
	if root.IsBroken {
		t.Error("root marked broken for a clean fixture")
	}

	// Index by name and start row to tell functions from same-named methods
	type key struct {
		name string
		row  uint
	}
	byKey := make(map[key]Block)
	for _, b := range blocks {
		byKey[key{b.NodeName, b.StartRow}] = b
	}

	greet, ok := byKey[key{"greet", 3}]
	if !ok {
		t.Fatal("module-level greet not found at row 3")
	}
	if greet.PC != 1 {
		t.Errorf("greet PC = %d, want 1", greet.PC)
	}
	if greet.CC != 1 {
		t.Errorf("greet CC = %d, want 1", greet.CC)
	}
	if greet.EndRow != 14 {
		t.Errorf("greet end_row = %d, want 14", greet.EndRow)
	}
	if greet.ALOC != 12 {
		t.Errorf("greet ALOC = %d, want 12", greet.ALOC)
	}
	// The docstring plus the stray "tes" expression
	if greet.CLOC != 2 {
		t.Errorf("greet CLOC = %d, want 2", greet.CLOC)
	}
	if greet.DCLOC != 1 {
		t.Errorf("greet DCLOC = %d, want 1", greet.DCLOC)
	}

	addNumbers, ok := byKey[key{"add_numbers", 16}]
	if !ok {
		t.Fatal("module-level add_numbers not found at row 16")
	}
	if addNumbers.PC != 4 {
		t.Errorf("add_numbers PC = %d, want 4", addNumbers.PC)
	}

	sayHello, ok := byKey[key{"say_hello_world", 19}]
	if !ok {
		t.Fatal("module-level say_hello_world not found at row 19")
	}
	if sayHello.PC != 0 {
		t.Errorf("say_hello_world PC = %d, want 0", sayHello.PC)
	}

	class, ok := byKey[key{"ExampleClass", 22}]
	if !ok {
		t.Fatal("ExampleClass not found at row 22")
	}
	if class.NodeType != "class_definition" {
		t.Errorf("class node_type = %q", class.NodeType)
	}
	// The class does not count itself
	if class.NOC != 0 {
		t.Errorf("class NOC = %d, want 0", class.NOC)
	}
	if class.NOM != 4 {
		t.Errorf("class NOM = %d, want 4", class.NOM)
	}
	if class.DCLOC != 1 {
		t.Errorf("class DCLOC = %d, want 1", class.DCLOC)
	}

	initMethod, ok := byKey[key{"__init__", 25}]
	if !ok {
		t.Fatal("__init__ not found at row 25")
	}
	if initMethod.PC != 2 {
		t.Errorf("__init__ PC = %d, want 2", initMethod.PC)
	}

	methodAdd, ok := byKey[key{"add_numbers", 31}]
	if !ok {
		t.Fatal("method add_numbers not found at row 31")
	}
	if methodAdd.PC != 5 {
		t.Errorf("method add_numbers PC = %d, want 5", methodAdd.PC)
	}
}

func TestFromFileBrokenSource(t *testing.T) {
	loader := pythonLoader(t)

	pf, err := loader.Parse("broken.py", []byte("def broken(:\n    pass\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pf == nil {
		t.Fatal("Parse returned nil")
	}
	defer pf.Close()

	blocks := FromFile(pf, loader.Config("python"))
	if len(blocks) == 0 {
		t.Fatal("no blocks for broken source")
	}

	// The error lands on the root or on the damaged definition itself,
	// depending on how the parser recovers.
	broken := false
	for _, b := range blocks {
		if b.IsBroken {
			broken = true
		}
	}
	if !broken {
		t.Error("no block marked broken for unparsable source")
	}
}

func TestFromFileDocComments(t *testing.T) {
	loader := pythonLoader(t)

	source := []byte(`"""Module docstring."""

# plain comment


def documented():
    """Function docstring."""
    return 1
`)

	pf, err := loader.Parse("doc.py", source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pf == nil {
		t.Fatal("Parse returned nil")
	}
	defer pf.Close()

	blocks := FromFile(pf, loader.Config("python"))
	root := blocks[0]

	if root.CLOC != 3 {
		t.Errorf("root CLOC = %d, want 3", root.CLOC)
	}
	if root.DCLOC != 2 {
		t.Errorf("root DCLOC = %d, want 2", root.DCLOC)
	}
	if root.ELOC != 3 {
		t.Errorf("root ELOC = %d, want 3", root.ELOC)
	}
}
