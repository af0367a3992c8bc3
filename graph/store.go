package graph

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultGraphDir is the directory name for codestats data
	DefaultGraphDir = ".codestats"
	// DefaultGraphFile is the default graph file name
	DefaultGraphFile = "graph.gob"
)

// GraphPath returns the default graph file path for a project root.
func GraphPath(rootPath string) string {
	return filepath.Join(rootPath, DefaultGraphDir, DefaultGraphFile)
}

// SaveBinary writes the graph to disk using gob encoding with gzip
// compression.
func (g *DependencyGraph) SaveBinary(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Update metadata
	g.LastIndexed = time.Now().Unix()
	g.NodeCount = len(g.Nodes)
	g.EdgeCount = len(g.Edges)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	enc := gob.NewEncoder(gz)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	return nil
}

// LoadBinary reads a graph from disk and rebuilds indexes.
func LoadBinary(path string) (*DependencyGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	var g DependencyGraph
	dec := gob.NewDecoder(gz)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}

	g.RebuildIndexes()

	return &g, nil
}

// Exists checks if a graph file exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsStale reports whether any file recorded in the graph has been
// modified or deleted since the graph was written.
func IsStale(g *DependencyGraph, rootPath string) bool {
	if g == nil || g.LastIndexed == 0 {
		return true
	}

	for path := range g.nodesByPath {
		if path == "__root__" {
			continue
		}
		info, err := os.Stat(filepath.Join(rootPath, path))
		if err != nil {
			if os.IsNotExist(err) {
				return true
			}
			continue // Skip files we can't stat
		}
		// Compare at second granularity, matching LastIndexed
		if info.ModTime().Unix() > g.LastIndexed {
			return true
		}
	}

	return false
}

func init() {
	// Register types for gob encoding
	gob.Register(&DependencyGraph{})
	gob.Register(&Node{})
	gob.Register(&Edge{})
}
