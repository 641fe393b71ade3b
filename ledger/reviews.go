package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
	"hospital-finder-server/hospitals"
)

// WriteReviews writes one "name;count;sum;average" line per record that has
// at least one review, in index order.
func WriteReviews(w io.Writer, idx *hospitals.Index) error {
	bw := bufio.NewWriter(w)
	for _, rec := range idx.Records() {
		if rec.NumReviews <= 0 {
			continue
		}
		line := fmt.Sprintf("%s;%d;%s;%s\n",
			rec.Name,
			rec.NumReviews,
			strconv.FormatFloat(rec.TotalRating, 'f', 6, 64),
			strconv.FormatFloat(rec.Rating, 'f', 6, 64),
		)
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type reviewLine struct {
	name        string
	numReviews  int
	totalRating float64
}

func parseReviewLine(line string) (reviewLine, error) {
	parts := strings.Split(line, ";")
	if len(parts) != 4 || parts[0] == "" {
		return reviewLine{}, fmt.Errorf("review line %q: %w", line, errs.ErrInvalidInput)
	}

	count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || count <= 0 {
		return reviewLine{}, fmt.Errorf("review count %q: %w", parts[1], errs.ErrInvalidInput)
	}
	sum, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return reviewLine{}, fmt.Errorf("review sum %q: %w", parts[2], errs.ErrInvalidInput)
	}
	// The stored average is only checked for shape; it is recomputed from
	// count and sum on restore.
	if _, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err != nil {
		return reviewLine{}, fmt.Errorf("review average %q: %w", parts[3], errs.ErrInvalidInput)
	}

	return reviewLine{name: parts[0], numReviews: count, totalRating: sum}, nil
}

// ReadReviews replays review lines into idx. Lines for hospitals missing
// from the index are ignored, and malformed lines or lines with no reviews
// are skipped.
func ReadReviews(r io.Reader, idx *hospitals.Index) (applied int, err error) {
	err = readLines(r, "review ledger", func(line string) bool {
		rl, perr := parseReviewLine(line)
		if perr != nil {
			log.Warn("Skipping review line", "err", perr)
			return true
		}

		if rerr := idx.RestoreReviews(rl.name, rl.numReviews, rl.totalRating); rerr != nil {
			log.Debug("Review for unknown hospital ignored", "name", rl.name)
			return true
		}
		applied++
		return true
	})
	return applied, err
}

func (l *Ledger) LoadReviews() error {
	file, err := os.Open(l.reviewsPath)
	if err != nil {
		return fmt.Errorf("opening review ledger: %w: %w", errs.ErrIOFailure, err)
	}
	defer file.Close()

	applied, err := ReadReviews(file, l.index)
	if err != nil {
		return fmt.Errorf("reading review ledger: %w: %w", errs.ErrIOFailure, err)
	}

	log.Infof("Loaded %d review entries from %s", applied, l.reviewsPath)
	return nil
}

func (l *Ledger) SaveReviews() (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Create(l.reviewsPath)
	if err != nil {
		return fmt.Errorf("writing review ledger: %w: %w", errs.ErrIOFailure, err)
	}
	defer closeInto(file, "review ledger", &err)

	if err := WriteReviews(file, l.index); err != nil {
		return fmt.Errorf("writing review ledger: %w: %w", errs.ErrIOFailure, err)
	}
	return nil
}

// SubmitReview records a 1..5 rating and rewrites the review ledger. When
// the write fails the rating stays applied in memory and the returned
// record reflects it alongside an errs.ErrIOFailure error.
func (l *Ledger) SubmitReview(name string, rating int) (hospitals.Record, error) {
	rec, err := l.index.RecordReview(name, rating)
	if err != nil {
		return hospitals.Record{}, err
	}

	log.Info("Review recorded", "hospital", name, "rating", rating, "average", rec.Rating, "reviews", rec.NumReviews)

	if err := l.SaveReviews(); err != nil {
		log.Error("Failed to persist review", "hospital", name, "err", err)
		return rec, err
	}
	return rec, nil
}
