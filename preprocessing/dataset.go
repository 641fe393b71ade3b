// Package preprocessing turns the flat input files into the in-memory
// location graph and hospital index.
package preprocessing

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"hospital-finder-server/hospitals"
	"hospital-finder-server/routing"
)

type Sources struct {
	LocationsPath string // "name,lat,lon"
	HospitalsPath string // "name;lat;lon;specialization"
	InfoPath      string // "name;rating;hours;fees;address"
	MaxLocations  int
	Buckets       int
}

type Stats struct {
	Locations   int  `json:"locations"`
	Hospitals   int  `json:"hospitals"`
	Records     int  `json:"records"`
	SkippedRows int  `json:"skippedRows"`
	GraphFull   bool `json:"graphFull"`
}

type Dataset struct {
	Graph *routing.Graph
	Index *hospitals.Index
	Stats Stats
}

// LoadGraph builds the location graph: plain locations first, hospitals
// after them, so plain locations always occupy the lowest indices.
func LoadGraph(src Sources) (*routing.Graph, Stats, error) {
	var stats Stats
	g := routing.NewGraph(src.MaxLocations)

	added, skipped, err := LoadVertices(g, src.LocationsPath, ',', ParseLocationRow)
	if err != nil {
		return nil, stats, err
	}
	stats.Locations = added
	stats.SkippedRows += skipped

	added, skipped, err = LoadVertices(g, src.HospitalsPath, ';', ParseHospitalRow)
	if err != nil {
		return nil, stats, err
	}
	stats.Hospitals = added
	stats.SkippedRows += skipped
	stats.GraphFull = g.Full()

	log.Infof("Location graph ready: %d locations, %d hospitals", stats.Locations, stats.Hospitals)
	return g, stats, nil
}

// LoadHospitalIndex reads the metadata file. A missing file yields an empty
// index; detail queries then find nothing to join.
func LoadHospitalIndex(src Sources) (*hospitals.Index, Stats, error) {
	var stats Stats
	idx := hospitals.NewIndex(src.Buckets)

	inserted, skipped, err := LoadIndex(idx, src.InfoPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("Hospital metadata file missing, index is empty", "path", src.InfoPath)
			return idx, stats, nil
		}
		return nil, stats, err
	}
	stats.Records = inserted
	stats.SkippedRows = skipped

	log.Infof("Hospital index ready: %d records", inserted)
	return idx, stats, nil
}

func LoadDataset(src Sources) (*Dataset, error) {
	g, gs, err := LoadGraph(src)
	if err != nil {
		return nil, err
	}
	idx, is, err := LoadHospitalIndex(src)
	if err != nil {
		return nil, err
	}

	gs.Records = is.Records
	gs.SkippedRows += is.SkippedRows
	return &Dataset{Graph: g, Index: idx, Stats: gs}, nil
}
