// Package ledger keeps hospital reviews and comments in sync with their
// flat files. A Ledger is owned by the caller and passed to whatever reads
// or mutates it; there is no package-level state.
package ledger

import (
	"sync"

	"github.com/charmbracelet/log"

	"hospital-finder-server/hospitals"
)

// DefaultMaxComments caps the number of comments held in memory.
const DefaultMaxComments = 100

// Directory tells the ledger which names are real hospitals.
type Directory interface {
	IsHospital(name string) bool
}

type Options struct {
	ReviewsPath  string
	CommentsPath string
	MaxComments  int
	Directory    Directory // optional; nil accepts any hospital name
}

type Ledger struct {
	mu sync.Mutex

	index     *hospitals.Index
	directory Directory

	reviewsPath  string
	commentsPath string
	maxComments  int

	comments  []Comment
	truncated bool // comment log held more lines than maxComments at load
	partial   bool // comment log could not be read through at load
}

func New(index *hospitals.Index, opts Options) *Ledger {
	max := opts.MaxComments
	if max <= 0 {
		max = DefaultMaxComments
	}
	return &Ledger{
		index:        index,
		directory:    opts.Directory,
		reviewsPath:  opts.ReviewsPath,
		commentsPath: opts.CommentsPath,
		maxComments:  max,
		comments:     make([]Comment, 0),
	}
}

// Flush writes the review ledger and rewrites the comment log from memory.
// The comment log is left alone when it was not fully loaded, since
// rewriting it would drop the lines that never made it into memory.
func (l *Ledger) Flush() error {
	if err := l.SaveReviews(); err != nil {
		return err
	}

	l.mu.Lock()
	truncated, partial := l.truncated, l.partial
	l.mu.Unlock()

	switch {
	case truncated:
		log.Warn("Comment log was truncated at load, not rewriting", "path", l.commentsPath)
		return nil
	case partial:
		log.Warn("Comment log was not fully read at load, not rewriting", "path", l.commentsPath)
		return nil
	}
	return l.SaveComments()
}
