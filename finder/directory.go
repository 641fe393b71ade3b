package finder

import (
	"fmt"

	"hospital-finder-server/errs"
	"hospital-finder-server/hospitals"
	"hospital-finder-server/routing"
)

// HospitalNames lists, in graph order, every vertex tagged with a valid
// specialization.
func (f *Finder) HospitalNames() []string {
	names := make([]string, 0)
	for _, loc := range f.graph.Locations {
		if hospitals.IsValidSpecialization(loc.Specialization) {
			names = append(names, loc.Name)
		}
	}
	return names
}

// IsHospital reports whether name is a vertex with a valid specialization.
func (f *Finder) IsHospital(name string) bool {
	i, err := f.graph.IndexOf(name)
	if err != nil {
		return false
	}
	return hospitals.IsValidSpecialization(f.graph.Locations[i].Specialization)
}

type Hop struct {
	Location     routing.Location `json:"location"`
	CumulativeKm float64          `json:"cumulativeKm"`
}

// Route returns the shortest path between two named vertices.
func (f *Finder) Route(from, to string) ([]Hop, error) {
	source, err := f.graph.IndexOf(from)
	if err != nil {
		return nil, err
	}
	target, err := f.graph.IndexOf(to)
	if err != nil {
		return nil, err
	}

	tree, err := routing.ShortestPaths(f.graph, source)
	if err != nil {
		return nil, err
	}
	path, err := tree.PathTo(target)
	if err != nil {
		return nil, fmt.Errorf("route %s -> %s: %w", from, to, errs.ErrNotFound)
	}

	hops := make([]Hop, 0, len(path))
	for _, v := range path {
		hops = append(hops, Hop{Location: f.graph.Locations[v], CumulativeKm: tree.Dist[v]})
	}
	return hops, nil
}
