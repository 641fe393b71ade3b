package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
)

// Field limits for a stored comment.
const (
	MaxUserBytes = 500
	MaxTextBytes = 1000
)

type Comment struct {
	Hospital string `json:"hospital"`
	User     string `json:"user"`
	Text     string `json:"text"`
}

func (c Comment) line() string {
	return c.Hospital + ";" + c.User + ";" + c.Text + "\n"
}

// parseCommentLine splits "hospital;user;text". The text is the rest of the
// line and may itself contain ';'.
func parseCommentLine(line string) (Comment, error) {
	parts := strings.SplitN(line, ";", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Comment{}, fmt.Errorf("comment line %q: %w", line, errs.ErrInvalidInput)
	}
	return Comment{Hospital: parts[0], User: parts[1], Text: parts[2]}, nil
}

func readCommentLines(r io.Reader, visit func(Comment) bool) error {
	return readLines(r, "comment log", func(line string) bool {
		c, err := parseCommentLine(line)
		if err != nil {
			log.Warn("Skipping comment line", "err", err)
			return true
		}
		return visit(c)
	})
}

// LoadComments replaces the in-memory comments with the contents of the
// comment log, keeping at most the configured number of entries. If the log
// exists but cannot be read through, the ledger stops rewriting it.
func (l *Ledger) LoadComments() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.comments = l.comments[:0]
	l.truncated = false
	l.partial = false

	file, err := os.Open(l.commentsPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.partial = true
		}
		return fmt.Errorf("opening comment log: %w: %w", errs.ErrIOFailure, err)
	}
	defer file.Close()

	err = readCommentLines(file, func(c Comment) bool {
		if len(l.comments) >= l.maxComments {
			l.truncated = true
			return false
		}
		l.comments = append(l.comments, c)
		return true
	})
	if err != nil {
		l.partial = true
		return fmt.Errorf("reading comment log: %w: %w", errs.ErrIOFailure, err)
	}

	if l.truncated {
		log.Warn("Comment log exceeds capacity, extra lines ignored", "max", l.maxComments)
	}
	log.Infof("Loaded %d comments from %s", len(l.comments), l.commentsPath)
	return nil
}

// AddComment stores a comment in memory and appends it to the log. If the
// append fails the comment stays in memory and errs.ErrIOFailure is
// returned.
func (l *Ledger) AddComment(hospital, user, text string) (c Comment, err error) {
	if l.directory != nil && !l.directory.IsHospital(hospital) {
		return Comment{}, fmt.Errorf("hospital %q: %w", hospital, errs.ErrNotFound)
	}

	c = Comment{Hospital: hospital, User: cleanText(user), Text: cleanText(text)}
	if !validField(c.Hospital) || !validField(c.User) || !validField(c.Text) {
		return Comment{}, fmt.Errorf("comment fields must be non-empty without ';' or newlines: %w", errs.ErrInvalidInput)
	}
	if len(c.User) > MaxUserBytes || len(c.Text) > MaxTextBytes {
		return Comment{}, fmt.Errorf("user is limited to %d bytes and text to %d: %w", MaxUserBytes, MaxTextBytes, errs.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.comments) >= l.maxComments {
		return Comment{}, fmt.Errorf("%d comments stored: %w", len(l.comments), errs.ErrCapacityExceeded)
	}
	l.comments = append(l.comments, c)

	file, err := os.OpenFile(l.commentsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return c, fmt.Errorf("appending comment: %w: %w", errs.ErrIOFailure, err)
	}
	defer closeInto(file, "comment log", &err)

	if _, err := file.WriteString(c.line()); err != nil {
		return c, fmt.Errorf("appending comment: %w: %w", errs.ErrIOFailure, err)
	}

	log.Debug("Comment added", "hospital", hospital, "user", c.User)
	return c, nil
}

// CommentsFor returns the in-memory comments for hospital in insertion
// order, followed by log lines for the same hospital whose user and text
// match no in-memory comment. If the log cannot be read the in-memory part
// is still returned together with errs.ErrIOFailure.
func (l *Ledger) CommentsFor(hospital string) ([]Comment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Comment, 0)
	seen := make(map[[2]string]struct{}, len(l.comments))
	for _, c := range l.comments {
		seen[[2]string{c.User, c.Text}] = struct{}{}
		if c.Hospital == hospital {
			out = append(out, c)
		}
	}

	file, err := os.Open(l.commentsPath)
	if err != nil {
		return out, fmt.Errorf("opening comment log: %w: %w", errs.ErrIOFailure, err)
	}
	defer file.Close()

	err = readCommentLines(file, func(c Comment) bool {
		if c.Hospital != hospital {
			return true
		}
		if _, dup := seen[[2]string{c.User, c.Text}]; dup {
			return true
		}
		out = append(out, c)
		return true
	})
	if err != nil {
		return out, fmt.Errorf("reading comment log: %w: %w", errs.ErrIOFailure, err)
	}
	return out, nil
}

// Comments returns a copy of every in-memory comment.
func (l *Ledger) Comments() []Comment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Comment(nil), l.comments...)
}

func (l *Ledger) Truncated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.truncated
}

// SaveComments rewrites the comment log from memory.
func (l *Ledger) SaveComments() (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Create(l.commentsPath)
	if err != nil {
		return fmt.Errorf("writing comment log: %w: %w", errs.ErrIOFailure, err)
	}
	defer closeInto(file, "comment log", &err)

	bw := bufio.NewWriter(file)
	for _, c := range l.comments {
		if _, err := bw.WriteString(c.line()); err != nil {
			return fmt.Errorf("writing comment log: %w: %w", errs.ErrIOFailure, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing comment log: %w: %w", errs.ErrIOFailure, err)
	}
	return nil
}
