package routing

import (
	"fmt"

	"hospital-finder-server/errs"
)

// DefaultMaxLocations caps the number of vertices a graph admits.
const DefaultMaxLocations = 100

// Location represents a vertex in the location graph (a college or a hospital)
type Location struct {
	Name           string  `json:"name"`           // Unique vertex name
	Latitude       float64 `json:"latitude"`       // Geographic latitude in degrees
	Longitude      float64 `json:"longitude"`      // Geographic longitude in degrees
	Specialization string  `json:"specialization"` // Empty for non-hospital vertices
}

func (l Location) coordinate() Coordinate {
	return Coordinate{Lat: l.Latitude, Lon: l.Longitude}
}

// Graph is a complete graph over all loaded locations. Edge weights are
// great-circle distances in kilometers, held in a dense symmetric matrix
// with zeros on the diagonal.
//
// A Graph is built once at load time and is read-only afterwards.
type Graph struct {
	Locations []Location  // Vertices in insertion order
	Matrix    [][]float64 // Matrix[i][j] = distance between vertex i and j in km
	capacity  int
}

func NewGraph(capacity int) *Graph {
	if capacity <= 0 {
		capacity = DefaultMaxLocations
	}
	return &Graph{
		Locations: make([]Location, 0),
		Matrix:    make([][]float64, 0),
		capacity:  capacity,
	}
}

// AddVertex appends loc and fills in its distance to every vertex already
// present, in both directions. It fails with errs.ErrCapacityExceeded once
// the graph is full.
func (g *Graph) AddVertex(loc Location) (int, error) {
	n := len(g.Locations)
	if n >= g.capacity {
		return -1, fmt.Errorf("adding %q (max %d locations): %w", loc.Name, g.capacity, errs.ErrCapacityExceeded)
	}

	row := make([]float64, n+1)
	for i := 0; i < n; i++ {
		d := HaversineKm(g.Locations[i].coordinate(), loc.coordinate())
		row[i] = d
		g.Matrix[i] = append(g.Matrix[i], d)
	}

	g.Locations = append(g.Locations, loc)
	g.Matrix = append(g.Matrix, row)
	return n, nil
}

// IndexOf returns the index of the vertex named name with a linear scan.
func (g *Graph) IndexOf(name string) (int, error) {
	for i, loc := range g.Locations {
		if loc.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("location %q: %w", name, errs.ErrNotFound)
}

func (g *Graph) Distance(i, j int) float64 {
	return g.Matrix[i][j]
}

func (g *Graph) Len() int {
	return len(g.Locations)
}

func (g *Graph) Capacity() int {
	return g.capacity
}

func (g *Graph) Full() bool {
	return len(g.Locations) >= g.capacity
}
