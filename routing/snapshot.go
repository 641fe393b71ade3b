package routing

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
)

// Snapshot is the on-disk form of a Graph (matching the stored GOB format).
type Snapshot struct {
	Capacity  int
	Locations []Location
	Matrix    [][]float64
}

func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Capacity:  g.capacity,
		Locations: g.Locations,
		Matrix:    g.Matrix,
	}
}

// FromSnapshot rebuilds a Graph, rejecting matrices that are not square,
// not symmetric or not zero on the diagonal.
func FromSnapshot(s Snapshot) (*Graph, error) {
	n := len(s.Locations)
	if s.Capacity > 0 && n > s.Capacity {
		return nil, fmt.Errorf("snapshot has %d locations, capacity %d: %w", n, s.Capacity, errs.ErrInvalidInput)
	}
	if len(s.Matrix) != n {
		return nil, fmt.Errorf("snapshot matrix has %d rows for %d locations: %w", len(s.Matrix), n, errs.ErrInvalidInput)
	}
	for i := 0; i < n; i++ {
		if len(s.Matrix[i]) != n {
			return nil, fmt.Errorf("snapshot matrix row %d has %d columns: %w", i, len(s.Matrix[i]), errs.ErrInvalidInput)
		}
		if s.Matrix[i][i] != 0 {
			return nil, fmt.Errorf("snapshot matrix diagonal %d is %f: %w", i, s.Matrix[i][i], errs.ErrInvalidInput)
		}
		for j := 0; j < i; j++ {
			if s.Matrix[i][j] != s.Matrix[j][i] || math.IsNaN(s.Matrix[i][j]) {
				return nil, fmt.Errorf("snapshot matrix not symmetric at (%d,%d): %w", i, j, errs.ErrInvalidInput)
			}
		}
	}

	g := NewGraph(s.Capacity)
	g.Locations = s.Locations
	g.Matrix = s.Matrix
	return g, nil
}

func SaveSnapshot(g *Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create GOB file %s: %w", filename, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(g.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode GOB to %s: %w", filename, err)
	}
	return nil
}

func LoadSnapshot(filename string) (*Graph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var s Snapshot
	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode GOB from %s: %w", filename, err)
	}

	g, err := FromSnapshot(s)
	if err != nil {
		return nil, err
	}

	log.Infof("Loaded graph from %s: %d locations", filename, g.Len())
	return g, nil
}
