package analyze

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"codestats/config"
	"codestats/graph"
	"codestats/metrics"
	"codestats/scanner"
)

const pythonSample = `def greet(name):
    return f"Hello, {name}!"


class ExampleClass:
    def greet(self):
        return "hi"
`

// grammarLoader returns a loader with the python grammar, skipping the
// test when none is installed.
func grammarLoader(t *testing.T) *scanner.GrammarLoader {
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

func TestRekeyPath(t *testing.T) {
	cached := []metrics.Block{
		{NodeName: "old.py", NodeType: "module", FilePath: "old.py"},
		{NodeName: "greet", NodeType: "function_definition", FilePath: "old.py"},
	}

	out := rekeyPath(cached, filepath.Join("src", "new.py"))

	if out[0].FilePath != filepath.Join("src", "new.py") {
		t.Errorf("root path = %q", out[0].FilePath)
	}
	if out[0].NodeName != "new.py" {
		t.Errorf("root name = %q, want new.py", out[0].NodeName)
	}
	if out[1].NodeName != "greet" {
		t.Errorf("function renamed: %q", out[1].NodeName)
	}
	// Input must not be mutated
	if cached[0].FilePath != "old.py" {
		t.Error("rekeyPath mutated its input")
	}
}

func TestRunDefault(t *testing.T) {
	loader := grammarLoader(t)

	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "example.py"), []byte(pythonSample), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var progressCalls int
	runner := NewRunner(Options{
		Target: target,
		Output: t.TempDir(),
		Format: config.FormatCSV,
		Progress: func(done, total int, path string) {
			progressCalls++
		},
	}, loader)

	if err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	blocks := runner.Report.Get(metrics.DefaultKey)
	// 1 file root + 1 class + 2 functions
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
	if blocks[0].FilePath != "example.py" {
		t.Errorf("file path = %q, want example.py", blocks[0].FilePath)
	}
	if progressCalls != 1 {
		t.Errorf("progress called %d times, want 1", progressCalls)
	}
}

func TestRunSingleFile(t *testing.T) {
	loader := grammarLoader(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "solo.py")
	if err := os.WriteFile(file, []byte(pythonSample), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := NewRunner(Options{Target: file, Output: t.TempDir(), Format: config.FormatCSV}, loader)
	if err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	blocks := runner.Report.Get(metrics.DefaultKey)
	if len(blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(blocks))
	}
}

func TestRunBuildsGraph(t *testing.T) {
	loader := grammarLoader(t)

	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "example.py"), []byte(pythonSample), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	output := t.TempDir()
	runner := NewRunner(Options{
		Target: target,
		Output: output,
		Format: config.FormatCSV,
		Graph:  true,
	}, loader)

	if err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := runner.Graph.GetStats()
	// root + module + class + 2 functions
	if stats.TotalNodes != 5 {
		t.Errorf("nodes = %d, want 5", stats.TotalNodes)
	}
	if stats.NodesByKind[graph.KindClass.String()] != 1 {
		t.Errorf("classes = %d, want 1", stats.NodesByKind[graph.KindClass.String()])
	}
	if stats.NodesByKind[graph.KindFunction.String()] != 2 {
		t.Errorf("functions = %d, want 2", stats.NodesByKind[graph.KindFunction.String()])
	}
	if stats.TotalEdges != 4 {
		t.Errorf("edges = %d, want 4", stats.TotalEdges)
	}

	// The method's parent is the class, not the module
	for id, node := range runner.Graph.Nodes {
		if node.Kind != graph.KindFunction {
			continue
		}
		parents := runner.Graph.Parents(id)
		if len(parents) != 1 {
			t.Fatalf("function %s has %d parents", node.Name, len(parents))
		}
		switch node.StartByte < 60 { // module-level greet comes first in the source
		case true:
			if parents[0].Kind != graph.KindModule {
				t.Errorf("module-level %s parent = %s", node.Name, parents[0].Kind)
			}
		case false:
			if parents[0].Kind != graph.KindClass {
				t.Errorf("method %s parent = %s", node.Name, parents[0].Kind)
			}
		}
	}

	dotPath, err := runner.SaveGraph()
	if err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	if _, err := os.Stat(dotPath); err != nil {
		t.Errorf("dot file not written: %v", err)
	}
	if !graph.Exists(graph.GraphPath(target)) {
		t.Error("binary graph not written")
	}
}

func TestSaveMetricsSingleKey(t *testing.T) {
	output := t.TempDir()
	runner := NewRunner(Options{Output: output, Format: config.FormatCSV}, nil)
	runner.Report.AddDefault([]metrics.Block{{NodeName: "x", NodeType: "module"}})

	paths, err := runner.SaveMetrics()
	if err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "metrics.csv" {
		t.Errorf("paths = %v, want [metrics.csv]", paths)
	}
}

func TestSaveMetricsHistoryKeys(t *testing.T) {
	output := t.TempDir()
	runner := NewRunner(Options{Output: output, Format: config.FormatJSON}, nil)
	runner.Report.Add("aaa111", []metrics.Block{{NodeName: "x"}})
	runner.Report.Add("bbb222", []metrics.Block{{NodeName: "y"}})

	paths, err := runner.SaveMetrics()
	if err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			t.Errorf("path %q lacks .json suffix", p)
		}
		if filepath.Base(filepath.Dir(p)) != "metrics" {
			t.Errorf("path %q not under metrics/", p)
		}
	}
}

func TestSaveMetricsEmptyReport(t *testing.T) {
	runner := NewRunner(Options{Output: t.TempDir(), Format: config.FormatCSV}, nil)

	paths, err := runner.SaveMetrics()
	if err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}
	if paths != nil {
		t.Errorf("paths = %v, want nil", paths)
	}
}

func TestRunHistory(t *testing.T) {
	loader := grammarLoader(t)
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@test",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@test",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init")
	if err := os.WriteFile(filepath.Join(root, "a.py"), []byte("def one():\n    return 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "add a")

	if err := os.WriteFile(filepath.Join(root, "b.py"), []byte(pythonSample), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "add b")

	run("rm", "b.py")
	run("commit", "-m", "drop b")

	runner := NewRunner(Options{
		Target:  root,
		Output:  t.TempDir(),
		Format:  config.FormatCSV,
		History: true,
	}, loader)

	if err := runner.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	keys := runner.Report.Keys()
	if len(keys) != 3 {
		t.Fatalf("got %d report keys, want 3", len(keys))
	}

	commits, err := scanner.ListCommits(root)
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}

	// First commit adds a.py: file root + one function
	first := runner.Report.Get(commits[0])
	if len(first) != 2 {
		t.Errorf("commit 1 has %d blocks, want 2", len(first))
	}

	// Second commit touches only b.py, so a.py is not re-emitted
	second := runner.Report.Get(commits[1])
	if len(second) != 4 {
		t.Errorf("commit 2 has %d blocks, want 4", len(second))
	}
	for _, b := range second {
		if b.FilePath != "b.py" {
			t.Errorf("commit 2 block for %s, want only b.py", b.FilePath)
		}
	}

	// Third commit only deletes, which produces no blocks
	third := runner.Report.Get(commits[2])
	if len(third) != 0 {
		t.Errorf("commit 3 has %d blocks, want 0", len(third))
	}
}

func TestRunHistoryRequiresRepository(t *testing.T) {
	runner := NewRunner(Options{
		Target:  t.TempDir(),
		Output:  t.TempDir(),
		Format:  config.FormatCSV,
		History: true,
	}, scanner.NewGrammarLoader())

	if err := runner.Run(); err == nil {
		t.Error("no error for history run outside a repository")
	}
}
