// Package dag provides the directed acyclic graph backing dependency checks:
// ordering generated objects for deployment and tracing reference cycles in
// formula sets.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph of string-identified nodes. Edges point from a
// dependency to its dependent.
type Graph struct {
	nodes      map[string]struct{}
	dependents map[string][]string // dependency -> dependents
	depends    map[string][]string // dependent -> dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]struct{}),
		dependents: make(map[string][]string),
		depends:    make(map[string][]string),
	}
}

// AddNode registers a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.dependents[id] = nil
	g.depends[id] = nil
}

// Has reports whether a node is registered.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge records that dependent reads from dependency. Both nodes must
// exist, self-loops are rejected, and duplicate edges collapse.
func (g *Graph) AddEdge(dependency, dependent string) error {
	if !g.Has(dependency) {
		return fmt.Errorf("dependency node %q does not exist", dependency)
	}
	if !g.Has(dependent) {
		return fmt.Errorf("dependent node %q does not exist", dependent)
	}
	if dependency == dependent {
		return fmt.Errorf("self-loop on %q", dependency)
	}
	if !containsString(g.dependents[dependency], dependent) {
		g.dependents[dependency] = append(g.dependents[dependency], dependent)
	}
	if !containsString(g.depends[dependent], dependency) {
		g.depends[dependent] = append(g.depends[dependent], dependency)
	}
	return nil
}

// Dependencies returns the direct dependencies of a node.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.depends[id]...)
}

// Dependents returns the direct dependents of a node.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, ds := range g.dependents {
		count += len(ds)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle and returns one cycle
// path (first and last element equal) when it does.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		inStack[id] = true
		for _, next := range g.dependents[id] {
			if !visited[next] {
				cameFrom[next] = id
				if visit(next) {
					return true
				}
			} else if inStack[next] {
				cycle = []string{next}
				for at := id; at != next; at = cameFrom[at] {
					cycle = append([]string{at}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		inStack[id] = false
		return false
	}

	// Deterministic traversal keeps the reported cycle stable.
	for _, id := range g.sortedIDs() {
		if !visited[id] && visit(id) {
			return true, cycle
		}
	}
	return false, nil
}

// TopologicalSort returns node IDs with every dependency before its
// dependents. The order is deterministic. Fails when the graph has a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", path)
	}

	visited := make(map[string]bool)
	order := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.depends[id] {
			visit(dep)
		}
		order = append(order, id)
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return order, nil
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
