// Package graph provides the structure dependency graph: module roots,
// classes and functions as nodes, with edges from each entity to its
// enclosing parent and from module roots to a synthetic project root.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeKind represents the type of a code entity in the graph.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindModule
	KindClass
	KindFunction
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// NodeID is a unique identifier for a node, generated deterministically
// from the node's file path, grammar kind and byte range.
type NodeID string

// GenerateNodeID creates a deterministic NodeID.
func GenerateNodeID(path, kind string, startByte, endByte uint) NodeID {
	data := fmt.Sprintf("%s:%s:%d-%d", path, kind, startByte, endByte)
	hash := sha256.Sum256([]byte(data))
	return NodeID(hex.EncodeToString(hash[:16]))
}

// rootID identifies the synthetic project root node.
var rootID = GenerateNodeID("__root__", "root", 0, 0)

// Node represents a code entity in the dependency graph.
type Node struct {
	ID          NodeID   `json:"id"`
	Kind        NodeKind `json:"kind"`
	Name        string   `json:"name"`
	Path        string   `json:"path"` // File path relative to project root
	GrammarKind string   `json:"grammar_kind,omitempty"`
	StartByte   uint     `json:"start_byte"`
	EndByte     uint     `json:"end_byte"`
}

// Label renders the node identity used in DOT output.
func (n *Node) Label() string {
	return fmt.Sprintf("%s:%s:%d-%d", n.Path, n.GrammarKind, n.StartByte, n.EndByte)
}

// Edge represents a dependency from an entity to its parent.
type Edge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// DependencyGraph is the main graph structure with indexed lookups.
type DependencyGraph struct {
	// Core storage
	Nodes map[NodeID]*Node `json:"nodes"`
	Edges []*Edge          `json:"edges"`

	// Indexes for fast lookup (rebuilt on load)
	nodesByPath map[string][]*Node
	edgesByFrom map[NodeID][]*Edge
	edgesByTo   map[NodeID][]*Edge

	// Metadata
	RootPath    string `json:"root"`
	Version     int    `json:"version"`
	NodeCount   int    `json:"node_count"`
	EdgeCount   int    `json:"edge_count"`
	LastIndexed int64  `json:"last_indexed"` // Unix timestamp
}

// NewDependencyGraph creates a graph holding only the project root node.
func NewDependencyGraph(rootPath string) *DependencyGraph {
	g := &DependencyGraph{
		Nodes:       make(map[NodeID]*Node),
		Edges:       make([]*Edge, 0),
		nodesByPath: make(map[string][]*Node),
		edgesByFrom: make(map[NodeID][]*Edge),
		edgesByTo:   make(map[NodeID][]*Edge),
		RootPath:    rootPath,
		Version:     1,
	}

	g.AddNode(&Node{
		ID:          rootID,
		Kind:        KindRoot,
		Name:        "__root__",
		Path:        "__root__",
		GrammarKind: "root",
	})

	return g
}

// RootID returns the ID of the synthetic project root node.
func (g *DependencyGraph) RootID() NodeID {
	return rootID
}

// AddNode adds a node to the graph and updates indexes. Adding an
// existing ID is a no-op.
func (g *DependencyGraph) AddNode(n *Node) {
	if _, exists := g.Nodes[n.ID]; exists {
		return
	}
	g.Nodes[n.ID] = n
	g.NodeCount++

	g.nodesByPath[n.Path] = append(g.nodesByPath[n.Path], n)
}

// AddEdge adds a dependency edge and updates indexes.
func (g *DependencyGraph) AddEdge(from, to NodeID) {
	e := &Edge{From: from, To: to}
	g.Edges = append(g.Edges, e)
	g.EdgeCount++

	g.edgesByFrom[from] = append(g.edgesByFrom[from], e)
	g.edgesByTo[to] = append(g.edgesByTo[to], e)
}

// GetNode retrieves a node by ID.
func (g *DependencyGraph) GetNode(id NodeID) *Node {
	return g.Nodes[id]
}

// GetNodesByPath returns all nodes in a given file path.
func (g *DependencyGraph) GetNodesByPath(path string) []*Node {
	return g.nodesByPath[path]
}

// Parents returns the nodes an entity depends on (its enclosing scopes).
func (g *DependencyGraph) Parents(id NodeID) []*Node {
	var parents []*Node
	for _, edge := range g.edgesByFrom[id] {
		if n := g.Nodes[edge.To]; n != nil {
			parents = append(parents, n)
		}
	}
	return parents
}

// Children returns the entities that depend on the given node.
func (g *DependencyGraph) Children(id NodeID) []*Node {
	var children []*Node
	for _, edge := range g.edgesByTo[id] {
		if n := g.Nodes[edge.From]; n != nil {
			children = append(children, n)
		}
	}
	return children
}

// Stats summarizes the graph for status output.
type Stats struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodesByKind map[string]int `json:"nodes_by_kind"`
}

// GetStats computes summary statistics.
func (g *DependencyGraph) GetStats() Stats {
	stats := Stats{
		TotalNodes:  len(g.Nodes),
		TotalEdges:  len(g.Edges),
		NodesByKind: make(map[string]int),
	}
	for _, n := range g.Nodes {
		stats.NodesByKind[n.Kind.String()]++
	}
	return stats
}

// RebuildIndexes rebuilds the in-memory indexes from Nodes and Edges.
// Call this after loading from disk.
func (g *DependencyGraph) RebuildIndexes() {
	g.nodesByPath = make(map[string][]*Node)
	g.edgesByFrom = make(map[NodeID][]*Edge)
	g.edgesByTo = make(map[NodeID][]*Edge)

	for _, n := range g.Nodes {
		g.nodesByPath[n.Path] = append(g.nodesByPath[n.Path], n)
	}

	for _, e := range g.Edges {
		g.edgesByFrom[e.From] = append(g.edgesByFrom[e.From], e)
		g.edgesByTo[e.To] = append(g.edgesByTo[e.To], e)
	}
}
