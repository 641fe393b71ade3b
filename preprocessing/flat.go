package preprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
	"hospital-finder-server/hospitals"
	"hospital-finder-server/routing"
)

// newReader returns a headerless csv reader for one of the flat files.
func newReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

func parseCoord(latS, lonS string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", latS, errs.ErrInvalidInput)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonS), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", lonS, errs.ErrInvalidInput)
	}
	return lat, lon, nil
}

// ParseLocationRow parses "name,lat,lon".
func ParseLocationRow(row []string) (routing.Location, error) {
	if len(row) < 3 || row[0] == "" {
		return routing.Location{}, fmt.Errorf("location row %v: %w", row, errs.ErrInvalidInput)
	}
	lat, lon, err := parseCoord(row[1], row[2])
	if err != nil {
		return routing.Location{}, err
	}
	return routing.Location{Name: row[0], Latitude: lat, Longitude: lon}, nil
}

// ParseHospitalRow parses "name;lat;lon;specialization". Only the first
// whitespace-separated token of the last field is the tag.
func ParseHospitalRow(row []string) (routing.Location, error) {
	if len(row) < 4 || row[0] == "" {
		return routing.Location{}, fmt.Errorf("hospital row %v: %w", row, errs.ErrInvalidInput)
	}
	lat, lon, err := parseCoord(row[1], row[2])
	if err != nil {
		return routing.Location{}, err
	}
	tag := strings.Fields(row[3])
	if len(tag) == 0 {
		return routing.Location{}, fmt.Errorf("hospital %q has no specialization: %w", row[0], errs.ErrInvalidInput)
	}
	return routing.Location{Name: row[0], Latitude: lat, Longitude: lon, Specialization: tag[0]}, nil
}

// ParseInfoRow parses "name;rating;hours;fees;address". The address is the
// rest of the line.
func ParseInfoRow(row []string) (hospitals.Record, error) {
	if len(row) < 5 || row[0] == "" {
		return hospitals.Record{}, fmt.Errorf("info row %v: %w", row, errs.ErrInvalidInput)
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return hospitals.Record{}, fmt.Errorf("rating %q: %w", row[1], errs.ErrInvalidInput)
	}
	fees, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return hospitals.Record{}, fmt.Errorf("fees %q: %w", row[3], errs.ErrInvalidInput)
	}
	return hospitals.Record{
		Name:         row[0],
		Rating:       rating,
		WorkingHours: row[2],
		AverageFees:  fees,
		Address:      strings.Join(row[4:], ";"),
	}, nil
}

// readRows calls visit for every row until EOF or until visit returns false.
func readRows(path string, comma rune, visit func(row []string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", path, errs.ErrIOFailure, err)
	}
	defer f.Close()

	r := newReader(f, comma)
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Warn("Skipping unreadable row", "file", path, "err", err)
				continue
			}
			return fmt.Errorf("read %s: %w: %w", path, errs.ErrIOFailure, err)
		}
		if !visit(row) {
			return nil
		}
	}
}

// LoadVertices adds the rows of path to g using parse. Malformed rows are
// skipped; loading stops once g is full.
func LoadVertices(g *routing.Graph, path string, comma rune, parse func([]string) (routing.Location, error)) (added, skipped int, err error) {
	err = readRows(path, comma, func(row []string) bool {
		loc, perr := parse(row)
		if perr != nil {
			log.Warn("Skipping row", "file", path, "err", perr)
			skipped++
			return true
		}
		if _, aerr := g.AddVertex(loc); aerr != nil {
			log.Warn("Location graph full, ignoring remaining rows", "file", path, "capacity", g.Capacity())
			return false
		}
		added++
		return true
	})
	return added, skipped, err
}

// LoadIndex inserts every metadata row of path into idx.
func LoadIndex(idx *hospitals.Index, path string) (inserted, skipped int, err error) {
	err = readRows(path, ';', func(row []string) bool {
		rec, perr := ParseInfoRow(row)
		if perr != nil {
			log.Warn("Skipping row", "file", path, "err", perr)
			skipped++
			return true
		}
		idx.Insert(rec)
		inserted++
		return true
	})
	return inserted, skipped, err
}
