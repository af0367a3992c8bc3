// MCP Server for codestats - provides source metrics tools to LLMs
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codestats/analyze"
	"codestats/config"
	"codestats/graph"
	"codestats/metrics"
	"codestats/render"
	"codestats/scanner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Input types for tools
type PathInput struct {
	Path string `json:"path" jsonschema:"Path to the file or directory to analyze"`
}

type ScanInput struct {
	Path    string `json:"path" jsonschema:"Path to the file or directory to analyze"`
	History bool   `json:"history,omitempty" jsonschema:"Analyze every commit of the git history instead of the working tree"`
}

type SymbolInput struct {
	Path string `json:"path" jsonschema:"Path to the file or directory to search"`
	Name string `json:"name" jsonschema:"Symbol name to search (substring match, case-insensitive)"`
	Kind string `json:"kind,omitempty" jsonschema:"Filter by symbol type: function, class, file, or all (default: all)"`
	File string `json:"file,omitempty" jsonschema:"Filter to specific file path (substring match)"`
}

type EmptyInput struct{}

type GraphInput struct {
	Path   string `json:"path" jsonschema:"Path to the directory to analyze"`
	Output string `json:"output,omitempty" jsonschema:"Directory to write tdg.dot to (default: the analyzed directory)"`
}

func main() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codestats",
		Version: "1.0.0",
	}, nil)

	// Tool: scan_metrics - Compute source metrics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_metrics",
		Description: "Compute source metrics for a file or directory: line counts, comment and doc comment counts, imports, classes, functions, cyclomatic complexity and parameter counts, per file root, class and function. Set history=true to replay the git history and get one table per commit.",
	}, handleScanMetrics)

	// Tool: get_symbol - Search for symbols by name
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_symbol",
		Description: "Search for classes and functions by name. Returns matching symbols with file location (path:line) and their grammar node type. Supports filtering by kind (function/class/file) and file path.",
	}, handleGetSymbol)

	// Tool: export_graph - Build and export the dependency graph
	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_graph",
		Description: "Build the structure dependency graph of a project (modules, classes, functions linked to their enclosing scope) and export it in Graphviz DOT format. Returns graph statistics and the written file path.",
	}, handleExportGraph)

	// Tool: status - Verify MCP connection
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Check codestats MCP server status. Returns version, grammar availability and supported languages.",
	}, handleStatus)

	// Run server on stdio
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Printf("Server error: %v", err)
	}
}

// validatePath validates and returns the absolute path
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}

	return absPath, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// runAnalysis runs a metrics analysis over a validated path.
func runAnalysis(absPath string, history, buildGraph bool) (*analyze.Runner, error) {
	loader := scanner.NewGrammarLoader()
	if !loader.HasGrammars() {
		return nil, fmt.Errorf("no grammar directory found; install grammar libraries or set CODESTATS_GRAMMAR_DIR")
	}

	runner := analyze.NewRunner(analyze.Options{
		Target:  absPath,
		Format:  config.FormatCSV,
		History: history,
		Graph:   buildGraph,
	}, loader)

	if err := runner.Run(); err != nil {
		return nil, err
	}
	return runner, nil
}

func handleScanMetrics(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	absPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	runner, err := runAnalysis(absPath, input.History, false)
	if err != nil {
		return errorResult("Scan error: " + err.Error()), nil, nil
	}

	var sb strings.Builder
	for _, key := range runner.Report.Keys() {
		if input.History {
			fmt.Fprintf(&sb, "=== %s ===\n", key)
		}
		var buf bytes.Buffer
		render.Table(&buf, runner.Report.Table(key))
		sb.Write(buf.Bytes())
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return textResult("No supported source files found."), nil, nil
	}
	return textResult(sb.String()), nil, nil
}

func handleGetSymbol(ctx context.Context, req *mcp.CallToolRequest, input SymbolInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return errorResult("name is required"), nil, nil
	}

	absPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	runner, err := runAnalysis(absPath, false, false)
	if err != nil {
		return errorResult("Scan error: " + err.Error()), nil, nil
	}

	matches := metrics.SearchBlocks(runner.Report.Get(metrics.DefaultKey), metrics.SymbolQuery{
		Name: input.Name,
		Kind: input.Kind,
		File: input.File,
	})

	if len(matches) == 0 {
		return textResult(fmt.Sprintf("No symbols matching %q found.", input.Name)), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d symbol(s) matching %q:\n\n", len(matches), input.Name)
	for _, m := range matches {
		fmt.Fprintf(&sb, "  %s (%s) %s:%d [%s]\n", m.Name, m.Kind, m.File, m.Line, m.Language)
	}
	return textResult(sb.String()), nil, nil
}

// loadStoredGraph loads the persisted graph for root. It fails when no
// graph was saved or the source tree changed since it was indexed.
func loadStoredGraph(root string) (*graph.DependencyGraph, error) {
	path := graph.GraphPath(root)
	if !graph.Exists(path) {
		return nil, fmt.Errorf("no stored graph at %s", path)
	}
	g, err := graph.LoadBinary(path)
	if err != nil {
		return nil, err
	}
	if graph.IsStale(g, root) {
		return nil, fmt.Errorf("stored graph for %s is stale", root)
	}
	return g, nil
}

func graphSummary(dotPath string, g *graph.DependencyGraph) *mcp.CallToolResult {
	stats := g.GetStats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Wrote %s\n\n", dotPath)
	fmt.Fprintf(&sb, "Nodes: %d (modules: %d, classes: %d, functions: %d)\n",
		stats.TotalNodes,
		stats.NodesByKind[graph.KindModule.String()],
		stats.NodesByKind[graph.KindClass.String()],
		stats.NodesByKind[graph.KindFunction.String()])
	fmt.Fprintf(&sb, "Edges: %d\n", stats.TotalEdges)
	return textResult(sb.String())
}

func handleExportGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	absPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	output := input.Output
	if output == "" {
		output = absPath
	}

	// A current stored graph skips the rescan entirely
	if g, err := loadStoredGraph(absPath); err == nil {
		dotPath := filepath.Join(output, "tdg.dot")
		if err := g.ExportDOT(dotPath); err != nil {
			return errorResult("Export error: " + err.Error()), nil, nil
		}
		return graphSummary(dotPath, g), nil, nil
	}

	loader := scanner.NewGrammarLoader()
	if !loader.HasGrammars() {
		return errorResult("no grammar directory found; install grammar libraries or set CODESTATS_GRAMMAR_DIR"), nil, nil
	}

	runner := analyze.NewRunner(analyze.Options{
		Target: absPath,
		Output: output,
		Format: config.FormatCSV,
		Graph:  true,
	}, loader)

	if err := runner.Run(); err != nil {
		return errorResult("Scan error: " + err.Error()), nil, nil
	}

	dotPath, err := runner.SaveGraph()
	if err != nil {
		return errorResult("Export error: " + err.Error()), nil, nil
	}

	return graphSummary(dotPath, runner.Graph), nil, nil
}

func handleStatus(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, any, error) {
	loader := scanner.NewGrammarLoader()

	var sb strings.Builder
	sb.WriteString("codestats MCP server v1.0.0\n")
	if loader.HasGrammars() {
		fmt.Fprintf(&sb, "Grammar dir: %s\n", loader.GrammarDir())
	} else {
		sb.WriteString("Grammar dir: not found (set CODESTATS_GRAMMAR_DIR)\n")
	}

	var langs []string
	for _, ext := range scanner.SupportedExtensions() {
		langs = append(langs, scanner.DisplayName(scanner.DetectLanguage("f"+ext)))
	}
	sort.Strings(langs)
	fmt.Fprintf(&sb, "Supported languages: %s\n", strings.Join(langs, ", "))
	return textResult(sb.String()), nil, nil
}
