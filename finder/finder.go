// Package finder answers "which hospitals of a given specialization are
// within reach of this institution" over the location graph and the
// hospital index.
package finder

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
	"hospital-finder-server/hospitals"
	"hospital-finder-server/routing"
)

// Query selects hospitals within MaxDistanceKm (inclusive) of Source whose
// specialization equals Specialization exactly.
type Query struct {
	Source         string
	MaxDistanceKm  float64
	Specialization string
}

// Match is one qualifying vertex with its shortest-path distance.
type Match struct {
	Index      int
	Location   routing.Location
	DistanceKm float64
}

// Detail joins a Match with its hospital record.
type Detail struct {
	Match
	Record hospitals.Record
}

// Finder holds read-only references to the graph and the index.
type Finder struct {
	graph *routing.Graph
	index *hospitals.Index
}

func New(graph *routing.Graph, index *hospitals.Index) *Finder {
	return &Finder{graph: graph, index: index}
}

func (f *Finder) Graph() *routing.Graph {
	return f.graph
}

func (f *Finder) Index() *hospitals.Index {
	return f.index
}

func (f *Finder) validate(q Query) (int, error) {
	if math.IsNaN(q.MaxDistanceKm) || q.MaxDistanceKm < 0 {
		return -1, fmt.Errorf("max distance %v: %w", q.MaxDistanceKm, errs.ErrInvalidInput)
	}
	return f.graph.IndexOf(q.Source)
}

// scan runs Dijkstra from the source and collects qualifying vertices in
// graph-index order. Results are not re-ranked by distance.
func (f *Finder) scan(q Query) ([]Match, error) {
	source, err := f.validate(q)
	if err != nil {
		return nil, err
	}

	tree, err := routing.ShortestPaths(f.graph, source)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0)
	for v, loc := range f.graph.Locations {
		if v == source {
			continue
		}
		if tree.Dist[v] <= q.MaxDistanceKm && loc.Specialization == q.Specialization {
			matches = append(matches, Match{Index: v, Location: loc, DistanceKm: tree.Dist[v]})
		}
	}
	return matches, nil
}

// Summary returns every qualifying vertex with its distance. It returns
// errs.ErrNoMatches when the query ran and nothing qualified.
func (f *Finder) Summary(q Query) ([]Match, error) {
	log.Infof("Finding %s hospitals within %.2f km of %s", q.Specialization, q.MaxDistanceKm, q.Source)

	matches, err := f.scan(q)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s within %.2f km of %s: %w", q.Specialization, q.MaxDistanceKm, q.Source, errs.ErrNoMatches)
	}

	log.Infof("Found %d hospitals", len(matches))
	return matches, nil
}

// Details joins every qualifying vertex to its index record. There is no
// cap on the number of entries. Vertices without a record are skipped, so
// the result never holds more entries than Summary for the same query.
func (f *Finder) Details(q Query) ([]Detail, error) {
	matches, err := f.scan(q)
	if err != nil {
		return nil, err
	}

	details := make([]Detail, 0, len(matches))
	for _, m := range matches {
		rec, err := f.index.Lookup(m.Location.Name)
		if err != nil {
			log.Warn("No hospital info for location", "name", m.Location.Name)
			continue
		}
		details = append(details, Detail{Match: m, Record: rec})
	}

	if len(details) == 0 {
		return nil, fmt.Errorf("%s within %.2f km of %s: %w", q.Specialization, q.MaxDistanceKm, q.Source, errs.ErrNoMatches)
	}
	return details, nil
}
