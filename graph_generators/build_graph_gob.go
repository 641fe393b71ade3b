package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"hospital-finder-server/preprocessing"
	"hospital-finder-server/routing"
)

func buildGraphGob(dir, outputPath string, maxLocations int) error {
	fmt.Printf("Reading flat files from %s...\n", dir)

	g, stats, err := preprocessing.LoadGraph(preprocessing.Sources{
		LocationsPath: filepath.Join(dir, "colleges.txt"),
		HospitalsPath: filepath.Join(dir, "hospitals.txt"),
		MaxLocations:  maxLocations,
	})
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	fmt.Printf("Graph has %d vertices (%d locations, %d hospitals, %d rows skipped)\n",
		g.Len(), stats.Locations, stats.Hospitals, stats.SkippedRows)
	if stats.GraphFull {
		fmt.Printf("Warning: graph reached its capacity of %d vertices\n", g.Capacity())
	}

	if err := routing.SaveSnapshot(g, outputPath); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err == nil {
		fmt.Printf("Wrote %s (%d bytes)\n", outputPath, info.Size())
	}
	return nil
}

func main() {
	var dir, out string
	var maxLocations int
	flag.StringVar(&dir, "dir", "data", "Directory containing colleges.txt and hospitals.txt")
	flag.StringVar(&out, "out", "", "Output gob file (default <dir>/location_graph.gob)")
	flag.IntVar(&maxLocations, "max", routing.DefaultMaxLocations, "Maximum number of graph vertices")
	flag.Parse()

	if out == "" {
		out = filepath.Join(dir, "location_graph.gob")
	}

	if err := buildGraphGob(dir, out, maxLocations); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
