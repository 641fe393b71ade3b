// Package config reads server settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	// Data files; relative names resolve against DataDir
	DataDir          string
	LocationsFile    string
	HospitalsFile    string
	HospitalInfoFile string
	ReviewsFile      string
	CommentsFile     string
	GraphSnapshot    string

	MaxLocations int
	MaxComments  int
	IndexBuckets int

	Debug bool
}

// LoadDotEnv loads .env from the working directory if there is one.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using environment variables")
	}
}

// Load reads configuration from environment variables or falls back to defaults
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		Addr:             getEnv("ADDR", ":8080"),
		DataDir:          dataDir,
		LocationsFile:    resolve(dataDir, getEnv("LOCATIONS_FILE", "colleges.txt")),
		HospitalsFile:    resolve(dataDir, getEnv("HOSPITALS_FILE", "hospitals.txt")),
		HospitalInfoFile: resolve(dataDir, getEnv("HOSPITAL_INFO_FILE", "info.txt")),
		ReviewsFile:      resolve(dataDir, getEnv("REVIEWS_FILE", "reviews.txt")),
		CommentsFile:     resolve(dataDir, getEnv("COMMENTS_FILE", "comments.txt")),
		GraphSnapshot:    resolve(dataDir, getEnv("GRAPH_SNAPSHOT", "location_graph.gob")),
		MaxLocations:     getEnvInt("MAX_LOCATIONS", 100),
		MaxComments:      getEnvInt("MAX_COMMENTS", 100),
		IndexBuckets:     getEnvInt("INDEX_BUCKETS", 100),
		Debug:            getEnvBool("DEBUG", false),
	}
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
		log.Warn("Ignoring invalid integer setting", "key", key, "value", val)
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultVal
}
