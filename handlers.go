package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"hospital-finder-server/errs"
	"hospital-finder-server/finder"
	"hospital-finder-server/hospitals"
	"hospital-finder-server/ledger"
	"hospital-finder-server/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type server struct {
	finder *finder.Finder
	ledger *ledger.Ledger
}

type reviewRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type commentRequest struct {
	User string `json:"user" binding:"required"`
	Text string `json:"text" binding:"required"`
}

type directoryEntry struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

func newRouter(s *server) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	api.GET("/locations", s.handleLocations)
	api.GET("/specializations", s.handleSpecializations)
	api.GET("/route", s.handleRoute)

	api.GET("/hospitals", s.handleDirectory)
	api.GET("/hospitals/:name", s.handleHospital)
	api.POST("/hospitals/nearby", s.handleNearby)
	api.POST("/hospitals/nearby/details", s.handleNearbyDetails)
	api.POST("/hospitals/nearby/export", s.handleNearbyExport)
	api.POST("/hospitals/:name/reviews", s.handleReview)
	api.GET("/hospitals/:name/comments", s.handleComments)
	api.POST("/hospitals/:name/comments", s.handleAddComment)

	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func requestID() string {
	id, err := gonanoid.New()
	if err != nil {
		log.Warn("Failed to generate request id", "err", err)
		return ""
	}
	return id
}

func (s *server) handleLocations(c *gin.Context) {
	locs := s.finder.Graph().Locations
	c.JSON(http.StatusOK, gin.H{"locations": locs, "count": len(locs)})
}

func (s *server) handleSpecializations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"specializations": hospitals.Specializations})
}

func (s *server) handleDirectory(c *gin.Context) {
	g := s.finder.Graph()
	names := s.finder.HospitalNames()

	entries := make([]directoryEntry, 0, len(names))
	for i, name := range names {
		entry := directoryEntry{Number: i + 1, Name: name}
		if v, err := g.IndexOf(name); err == nil {
			entry.Specialization = g.Locations[v].Specialization
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": entries, "count": len(entries)})
}

func (s *server) handleHospital(c *gin.Context) {
	rec, err := s.finder.Index().Lookup(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *server) handleNearby(c *gin.Context) {
	log.Info("=== Received nearby hospitals request ===")

	var req finder.NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Failed to parse request", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := req.Query()
	log.Infof("Request details: source=%s max=%.2f km specialization=%s", q.Source, q.MaxDistanceKm, q.Specialization)

	matches, err := s.finder.Summary(q)
	if err != nil && !errors.Is(err, errs.ErrNoMatches) {
		respondError(c, err)
		return
	}

	resp := finder.PrepareResponse(q, matches)
	resp.RequestID = requestID()
	if resp.NoMatches {
		resp.Message = fmt.Sprintf("No %s hospitals within %.2f km of %s", q.Specialization, q.MaxDistanceKm, q.Source)
	}

	log.Infof("Sending %d matches", resp.Count)
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleNearbyDetails(c *gin.Context) {
	log.Info("=== Received nearby hospital details request ===")

	var req finder.NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Failed to parse request", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := req.Query()

	details, err := s.finder.Details(q)
	if err != nil && !errors.Is(err, errs.ErrNoMatches) {
		respondError(c, err)
		return
	}

	resp := finder.PrepareDetailsResponse(q, details)
	resp.RequestID = requestID()
	if resp.NoMatches {
		resp.Message = fmt.Sprintf("No %s hospitals with details within %.2f km of %s", q.Specialization, q.MaxDistanceKm, q.Source)
	}

	log.Infof("Sending %d hospital details", resp.Count)
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleNearbyExport(c *gin.Context) {
	var req finder.NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := req.Query()

	details, err := s.finder.Details(q)
	if err != nil && !errors.Is(err, errs.ErrNoMatches) {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteDetails(&buf, q, details); err != nil {
		respondError(c, fmt.Errorf("building spreadsheet: %w: %w", errs.ErrIOFailure, err))
		return
	}

	filename := fmt.Sprintf("hospitals-%s.xlsx", requestID())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *server) handleRoute(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	hops, err := s.finder.Route(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":       from,
		"to":         to,
		"hops":       hops,
		"distanceKm": hops[len(hops)-1].CumulativeKm,
	})
}

func (s *server) handleReview(c *gin.Context) {
	name := c.Param("name")

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.ledger.SubmitReview(name, req.Rating)
	if err != nil {
		if errors.Is(err, errs.ErrIOFailure) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "applied": true, "hospital": rec})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospital": rec})
}

func (s *server) handleComments(c *gin.Context) {
	name := c.Param("name")
	if !s.finder.IsHospital(name) {
		respondError(c, fmt.Errorf("hospital %q: %w", name, errs.ErrNotFound))
		return
	}

	comments, err := s.ledger.CommentsFor(name)
	resp := gin.H{"hospital": name, "comments": comments, "count": len(comments)}
	if err != nil {
		log.Warn("Comment log unavailable, returning in-memory comments", "err", err)
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleAddComment(c *gin.Context) {
	name := c.Param("name")

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := s.ledger.AddComment(name, req.User, req.Text)
	if err != nil {
		if errors.Is(err, errs.ErrIOFailure) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "applied": true, "comment": comment})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
