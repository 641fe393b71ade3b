package hospitals

import (
	"fmt"
	"sync"

	"hospital-finder-server/errs"
)

// DefaultBuckets is the bucket count used when none is configured.
const DefaultBuckets = 100

// hash is djb2: h = h*33 + c over the bytes of s, wrapping at 32 bits.
func hash(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = (h << 5) + h + uint32(s[i])
	}
	return h
}

// Index maps hospital names to records using separate chaining. Inserting
// an existing name adds a second node to the chain; lookups return the
// first node inserted.
type Index struct {
	mu      sync.RWMutex
	buckets [][]*Record
	size    int
}

func NewIndex(buckets int) *Index {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &Index{buckets: make([][]*Record, buckets)}
}

func (idx *Index) bucketOf(name string) int {
	return int(hash(name) % uint32(len(idx.buckets)))
}

// Insert appends rec to its chain. Review state always starts empty: the
// count and running sum are reset and rec.Rating is kept as the average.
func (idx *Index) Insert(rec Record) {
	rec.NumReviews = 0
	rec.TotalRating = 0

	idx.mu.Lock()
	defer idx.mu.Unlock()

	b := idx.bucketOf(rec.Name)
	idx.buckets[b] = append(idx.buckets[b], &rec)
	idx.size++
}

// find returns the first chain node named name. Callers hold idx.mu.
func (idx *Index) find(name string) *Record {
	for _, rec := range idx.buckets[idx.bucketOf(name)] {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// Lookup returns a copy of the record for name.
func (idx *Index) Lookup(name string) (Record, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rec := idx.find(name)
	if rec == nil {
		return Record{}, fmt.Errorf("hospital %q: %w", name, errs.ErrNotFound)
	}
	return *rec, nil
}

// RecordReview adds one rating to the named hospital and recomputes its
// average. Nothing is mutated when the rating is out of range or the
// hospital is unknown.
func (idx *Index) RecordReview(name string, rating int) (Record, error) {
	if rating < MinRating || rating > MaxRating {
		return Record{}, fmt.Errorf("rating %d outside %d..%d: %w", rating, MinRating, MaxRating, errs.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	rec := idx.find(name)
	if rec == nil {
		return Record{}, fmt.Errorf("hospital %q: %w", name, errs.ErrNotFound)
	}

	rec.NumReviews++
	rec.TotalRating += float64(rating)
	rec.Rating = rec.TotalRating / float64(rec.NumReviews)
	return *rec, nil
}

// RestoreReviews overwrites the review state of the named hospital with
// persisted values. The average is recomputed from the count and sum; a
// non-positive count is rejected so the loaded rating stays in place.
func (idx *Index) RestoreReviews(name string, numReviews int, totalRating float64) error {
	if numReviews <= 0 {
		return fmt.Errorf("review count %d for %q: %w", numReviews, name, errs.ErrInvalidInput)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	rec := idx.find(name)
	if rec == nil {
		return fmt.Errorf("hospital %q: %w", name, errs.ErrNotFound)
	}

	rec.NumReviews = numReviews
	rec.TotalRating = totalRating
	rec.Rating = totalRating / float64(numReviews)
	return nil
}

// Records returns copies of every record in bucket order, chain order
// within a bucket.
func (idx *Index) Records() []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Record, 0, idx.size)
	for _, chain := range idx.buckets {
		for _, rec := range chain {
			out = append(out, *rec)
		}
	}
	return out
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}
