package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"hospital-finder-server/config"
	"hospital-finder-server/errs"
	"hospital-finder-server/finder"
	"hospital-finder-server/ledger"
	"hospital-finder-server/preprocessing"
	"hospital-finder-server/routing"
)

func setupLogging(debug bool) {
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	gin.SetMode(gin.ReleaseMode)
	if debug {
		log.SetLevel(log.DebugLevel)
		gin.SetMode(gin.DebugMode)
	}
}

func sourcesOf(cfg *config.Config) preprocessing.Sources {
	return preprocessing.Sources{
		LocationsPath: cfg.LocationsFile,
		HospitalsPath: cfg.HospitalsFile,
		InfoPath:      cfg.HospitalInfoFile,
		MaxLocations:  cfg.MaxLocations,
		Buckets:       cfg.IndexBuckets,
	}
}

// checkPrimaryInputs stats the locations and hospitals files and returns
// the newest modification time among them.
func checkPrimaryInputs(cfg *config.Config) (time.Time, error) {
	var newest time.Time
	for _, path := range []string{cfg.LocationsFile, cfg.HospitalsFile} {
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, fmt.Errorf("primary input %s: %w: %w", path, errs.ErrIOFailure, err)
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, nil
}

// loadSnapshot returns the snapshot graph, or nil when it is missing, older
// than the flat files, larger than the configured cap or invalid.
func loadSnapshot(cfg *config.Config, inputsModified time.Time) *routing.Graph {
	info, err := os.Stat(cfg.GraphSnapshot)
	if err != nil {
		return nil
	}
	if info.ModTime().Before(inputsModified) {
		log.Warn("Graph snapshot is older than the flat files, rebuilding", "path", cfg.GraphSnapshot)
		return nil
	}

	g, err := routing.LoadSnapshot(cfg.GraphSnapshot)
	if err != nil {
		log.Warn("Ignoring graph snapshot", "path", cfg.GraphSnapshot, "err", err)
		return nil
	}
	if g.Len() > cfg.MaxLocations {
		log.Warn("Graph snapshot exceeds MAX_LOCATIONS, rebuilding", "locations", g.Len(), "max", cfg.MaxLocations)
		return nil
	}
	if g.Capacity() != cfg.MaxLocations {
		log.Warn("Graph snapshot capacity differs from MAX_LOCATIONS", "snapshot", g.Capacity(), "configured", cfg.MaxLocations)
	}
	return g
}

// loadGraph prefers the pre-generated snapshot and falls back to the flat
// files. Both primary inputs must exist either way.
func loadGraph(cfg *config.Config) (*routing.Graph, error) {
	modified, err := checkPrimaryInputs(cfg)
	if err != nil {
		return nil, err
	}

	if g := loadSnapshot(cfg, modified); g != nil {
		return g, nil
	}

	log.Info("Building location graph from flat files...")
	g, _, err := preprocessing.LoadGraph(sourcesOf(cfg))
	return g, err
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	setupLogging(cfg.Debug)

	g, err := loadGraph(cfg)
	if err != nil {
		log.Fatalf("Failed to load required location data: %v", err)
	}

	idx, _, err := preprocessing.LoadHospitalIndex(sourcesOf(cfg))
	if err != nil {
		log.Fatalf("Failed to load hospital metadata: %v", err)
	}

	f := finder.New(g, idx)
	l := ledger.New(idx, ledger.Options{
		ReviewsPath:  cfg.ReviewsFile,
		CommentsPath: cfg.CommentsFile,
		MaxComments:  cfg.MaxComments,
		Directory:    f,
	})
	if err := l.LoadReviews(); err != nil {
		log.Warn("Starting without saved reviews", "err", err)
	}
	if err := l.LoadComments(); err != nil {
		log.Warn("Starting without saved comments", "err", err)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(&server{finder: f, ledger: l}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Hospital Finder Server starting on %s", cfg.Addr)
		log.Infof("%d locations, %d hospitals, %d records", g.Len(), len(f.HospitalNames()), idx.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "err", err)
	}

	if err := l.Flush(); err != nil {
		log.Error("Failed to save ledgers", "err", err)
	}
	log.Info("Server stopped")
}
