package routing

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
)

// NoPredecessor marks vertices without a predecessor in a PathTree.
const NoPredecessor = -1

// PathTree holds single-source shortest-path results over a Graph.
type PathTree struct {
	Source int
	Dist   []float64 // Dist[v] = shortest distance from Source in km
	Prev   []int     // Prev[v] = predecessor of v, NoPredecessor for Source
}

// findNearestUnvisited scans every vertex and returns the unvisited one with
// the smallest tentative distance. Ties go to the lowest index.
func findNearestUnvisited(dist []float64, visited []bool) int {
	minDist := math.Inf(1)
	minIndex := -1

	for v := range dist {
		if !visited[v] && dist[v] < minDist {
			minDist = dist[v]
			minIndex = v
		}
	}

	return minIndex
}

// ShortestPaths runs Dijkstra from source over the dense matrix. Vertex
// selection is a linear min-scan, O(V^2) overall, which is the right fit
// for a small complete graph.
func ShortestPaths(g *Graph, source int) (*PathTree, error) {
	n := g.Len()
	if source < 0 || source >= n {
		return nil, fmt.Errorf("source index %d (graph has %d locations): %w", source, n, errs.ErrNotFound)
	}

	dist := make([]float64, n)
	prev := make([]int, n)
	visited := make([]bool, n)

	for v := 0; v < n; v++ {
		dist[v] = math.Inf(1)
		prev[v] = NoPredecessor
	}
	dist[source] = 0

	for count := 0; count < n-1; count++ {
		u := findNearestUnvisited(dist, visited)
		if u == -1 {
			break
		}
		visited[u] = true

		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			if newDist := dist[u] + g.Matrix[u][v]; newDist < dist[v] {
				dist[v] = newDist
				prev[v] = u
			}
		}
	}

	log.Debug("Dijkstra completed", "source", g.Locations[source].Name, "vertices", n)
	return &PathTree{Source: source, Dist: dist, Prev: prev}, nil
}

// PathTo follows the predecessor chain from target back to the source and
// returns the vertex indices from source to target.
func (t *PathTree) PathTo(target int) ([]int, error) {
	if target < 0 || target >= len(t.Dist) {
		return nil, fmt.Errorf("target index %d: %w", target, errs.ErrNotFound)
	}
	if math.IsInf(t.Dist[target], 1) {
		return nil, fmt.Errorf("no path from %d to %d: %w", t.Source, target, errs.ErrNotFound)
	}

	path := make([]int, 0)
	current := target
	for current != t.Source {
		path = append([]int{current}, path...)
		prev := t.Prev[current]
		if prev == NoPredecessor {
			return nil, fmt.Errorf("path reconstruction failed at vertex %d: %w", current, errs.ErrNotFound)
		}
		current = prev
	}
	path = append([]int{t.Source}, path...)

	return path, nil
}
