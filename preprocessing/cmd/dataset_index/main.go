package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"hospital-finder-server/hospitals"
	"hospital-finder-server/preprocessing"
	"hospital-finder-server/routing"
)

type datasetDump struct {
	Locations []routing.Location  `json:"locations"`
	Hospitals []hospitals.Record  `json:"hospitals"`
	Summary   preprocessing.Stats `json:"summary"`
}

func main() {
	var dir string
	var out string
	var maxLocations int
	flag.StringVar(&dir, "dir", "data", "Directory containing colleges.txt, hospitals.txt, info.txt")
	flag.StringVar(&out, "out", "preprocessing/cache/dataset.json", "Path to write JSON dump of the dataset")
	flag.IntVar(&maxLocations, "max", routing.DefaultMaxLocations, "Maximum number of graph vertices")
	flag.Parse()

	log.Infof("Loading dataset from %s...", dir)
	ds, err := preprocessing.LoadDataset(preprocessing.Sources{
		LocationsPath: filepath.Join(dir, "colleges.txt"),
		HospitalsPath: filepath.Join(dir, "hospitals.txt"),
		InfoPath:      filepath.Join(dir, "info.txt"),
		MaxLocations:  maxLocations,
		Buckets:       hospitals.DefaultBuckets,
	})
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	dump := datasetDump{
		Locations: ds.Graph.Locations,
		Hospitals: ds.Index.Records(),
		Summary:   ds.Stats,
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		log.Fatalf("failed to ensure output dir: %v", err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("failed to create output file %s: %v", out, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&dump); err != nil {
		log.Fatalf("failed to write JSON: %v", err)
	}

	fmt.Printf("Dataset written to %s\n", out)
	fmt.Printf("Summary: locations=%d hospitals=%d records=%d skipped=%d\n",
		ds.Stats.Locations, ds.Stats.Hospitals, ds.Stats.Records, ds.Stats.SkippedRows)
}
