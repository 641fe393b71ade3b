package ledger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hospital-finder-server/errs"
	"hospital-finder-server/hospitals"
)

type fakeDirectory map[string]bool

func (d fakeDirectory) IsHospital(name string) bool { return d[name] }

func newTestLedger(t *testing.T, maxComments int) (*Ledger, *hospitals.Index, string) {
	t.Helper()

	dir := t.TempDir()
	idx := hospitals.NewIndex(hospitals.DefaultBuckets)
	for _, name := range []string{"Ruby Hall Clinic", "Sahyadri Hospital"} {
		idx.Insert(hospitals.Record{Name: name, Rating: 3.5, WorkingHours: "24x7", AverageFees: 700, Address: "Pune"})
	}

	l := New(idx, Options{
		ReviewsPath:  filepath.Join(dir, "reviews.txt"),
		CommentsPath: filepath.Join(dir, "comments.txt"),
		MaxComments:  maxComments,
		Directory:    fakeDirectory{"Ruby Hall Clinic": true, "Sahyadri Hospital": true},
	})
	return l, idx, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestSubmitReviewPersistsLedger(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)

	if _, err := l.SubmitReview("Ruby Hall Clinic", 4); err != nil {
		t.Fatalf("SubmitReview returned error: %v", err)
	}
	rec, err := l.SubmitReview("Ruby Hall Clinic", 5)
	if err != nil {
		t.Fatalf("SubmitReview returned error: %v", err)
	}
	if rec.NumReviews != 2 || rec.Rating != 4.5 {
		t.Errorf("expected 2 reviews averaging 4.5, got %+v", rec)
	}

	data, err := os.ReadFile(filepath.Join(dir, "reviews.txt"))
	if err != nil {
		t.Fatalf("reading ledger: %v", err)
	}
	want := "Ruby Hall Clinic;2;9.000000;4.500000\n"
	if string(data) != want {
		t.Errorf("expected ledger %q, got %q", want, string(data))
	}
}

func TestSubmitReviewRejections(t *testing.T) {
	l, idx, _ := newTestLedger(t, 0)

	if _, err := l.SubmitReview("Ruby Hall Clinic", 6); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := l.SubmitReview("Nowhere", 3); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	rec, _ := idx.Lookup("Ruby Hall Clinic")
	if rec.NumReviews != 0 || rec.Rating != 3.5 {
		t.Errorf("rejected reviews must not mutate the record: %+v", rec)
	}
}

func TestSubmitReviewKeepsRatingWhenWriteFails(t *testing.T) {
	idx := hospitals.NewIndex(hospitals.DefaultBuckets)
	idx.Insert(hospitals.Record{Name: "Ruby Hall Clinic", Rating: 3})
	l := New(idx, Options{ReviewsPath: filepath.Join(t.TempDir(), "missing", "reviews.txt")})

	rec, err := l.SubmitReview("Ruby Hall Clinic", 5)
	if !errors.Is(err, errs.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	if rec.NumReviews != 1 {
		t.Errorf("returned record should reflect the review: %+v", rec)
	}
	stored, _ := idx.Lookup("Ruby Hall Clinic")
	if stored.NumReviews != 1 || stored.Rating != 5 {
		t.Errorf("review should stay applied in memory: %+v", stored)
	}
}

func TestLoadReviewsRestoresState(t *testing.T) {
	l, idx, dir := newTestLedger(t, 0)
	writeFile(t, filepath.Join(dir, "reviews.txt"),
		"Ruby Hall Clinic;3;12.000000;4.000000\n"+
			"Unknown Place;1;5.000000;5.000000\n"+
			"broken line\n"+
			"Sahyadri Hospital;x;1;1\n")

	if err := l.LoadReviews(); err != nil {
		t.Fatalf("LoadReviews returned error: %v", err)
	}

	rec, _ := idx.Lookup("Ruby Hall Clinic")
	if rec.NumReviews != 3 || rec.TotalRating != 12 || rec.Rating != 4 {
		t.Errorf("unexpected restored record %+v", rec)
	}
	other, _ := idx.Lookup("Sahyadri Hospital")
	if other.NumReviews != 0 {
		t.Errorf("malformed line must be skipped: %+v", other)
	}

	// A new review continues from the restored sum.
	rec, _ = l.SubmitReview("Ruby Hall Clinic", 2)
	if rec.NumReviews != 4 || rec.Rating != 3.5 {
		t.Errorf("expected 4 reviews averaging 3.5, got %+v", rec)
	}
}

func TestLoadReviewsMissingFile(t *testing.T) {
	l, _, _ := newTestLedger(t, 0)
	if err := l.LoadReviews(); !errors.Is(err, errs.ErrIOFailure) {
		t.Errorf("expected ErrIOFailure, got %v", err)
	}
}

func TestWriteReviewsSkipsUnreviewed(t *testing.T) {
	idx := hospitals.NewIndex(hospitals.DefaultBuckets)
	idx.Insert(hospitals.Record{Name: "Quiet Clinic", Rating: 4})

	var buf bytes.Buffer
	if err := WriteReviews(&buf, idx); err != nil {
		t.Fatalf("WriteReviews returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty ledger, got %q", buf.String())
	}
}

func TestAddCommentAppendsToLog(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)

	c, err := l.AddComment("Ruby Hall Clinic", "asha", "Clean wards")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if c.User != "asha" || c.Text != "Clean wards" {
		t.Errorf("unexpected comment %+v", c)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "comments.txt"))
	if string(data) != "Ruby Hall Clinic;asha;Clean wards\n" {
		t.Errorf("unexpected log %q", string(data))
	}
}

func TestAddCommentValidation(t *testing.T) {
	l, _, _ := newTestLedger(t, 0)

	tests := []struct {
		name     string
		hospital string
		user     string
		text     string
		wantErr  error
	}{
		{"unknown hospital", "Nowhere", "asha", "hello", errs.ErrNotFound},
		{"separator in text", "Ruby Hall Clinic", "asha", "good; fast", errs.ErrInvalidInput},
		{"newline in text", "Ruby Hall Clinic", "asha", "good\nfast", errs.ErrInvalidInput},
		{"empty user", "Ruby Hall Clinic", "  ", "hello", errs.ErrInvalidInput},
		{"separator in user", "Ruby Hall Clinic", "a;b", "hello", errs.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.AddComment(tt.hospital, tt.user, tt.text); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
	if n := len(l.Comments()); n != 0 {
		t.Errorf("rejected comments must not be stored, have %d", n)
	}
}

func TestAddCommentNormalizesText(t *testing.T) {
	l, _, _ := newTestLedger(t, 0)

	// Full-width letters fold to ASCII and the bell character is dropped.
	c, err := l.AddComment("Ruby Hall Clinic", "ａｓｈａ", "ok\a")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if c.User != "asha" || c.Text != "ok" {
		t.Errorf("expected normalized comment, got %+v", c)
	}
}

func TestAddCommentCapacity(t *testing.T) {
	l, _, _ := newTestLedger(t, 2)

	for i := 0; i < 2; i++ {
		if _, err := l.AddComment("Ruby Hall Clinic", "asha", "visit"); err != nil {
			t.Fatalf("comment %d: %v", i, err)
		}
	}
	if _, err := l.AddComment("Ruby Hall Clinic", "asha", "one more"); !errors.Is(err, errs.ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestLoadCommentsTruncatesAtCapacity(t *testing.T) {
	l, _, dir := newTestLedger(t, 2)
	writeFile(t, filepath.Join(dir, "comments.txt"),
		"Ruby Hall Clinic;asha;first\n"+
			"no separators here\n"+
			"Sahyadri Hospital;ravi;second; with more\n"+
			"Ruby Hall Clinic;meera;third\n")

	if err := l.LoadComments(); err != nil {
		t.Fatalf("LoadComments returned error: %v", err)
	}

	got := l.Comments()
	if len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	if got[1].Text != "second; with more" {
		t.Errorf("text should keep the rest of the line, got %q", got[1].Text)
	}
	if !l.Truncated() {
		t.Error("expected truncated flag after hitting capacity")
	}
}

func TestCommentsForMergesLogWithoutDuplicates(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)
	logPath := filepath.Join(dir, "comments.txt")
	writeFile(t, logPath, "Ruby Hall Clinic;asha;first\n")

	if err := l.LoadComments(); err != nil {
		t.Fatalf("LoadComments returned error: %v", err)
	}
	if _, err := l.AddComment("Ruby Hall Clinic", "ravi", "second"); err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}

	// Written by another process after load.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	f.WriteString("Ruby Hall Clinic;meera;third\nSahyadri Hospital;asha;elsewhere\n")
	f.Close()

	got, err := l.CommentsFor("Ruby Hall Clinic")
	if err != nil {
		t.Fatalf("CommentsFor returned error: %v", err)
	}
	var texts []string
	for _, c := range got {
		texts = append(texts, c.Text)
	}
	if strings.Join(texts, ",") != "first,second,third" {
		t.Errorf("expected first,second,third; got %v", texts)
	}
}

func TestCommentsForMissingLogReturnsMemory(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)
	if _, err := l.AddComment("Ruby Hall Clinic", "asha", "hello"); err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	os.Remove(filepath.Join(dir, "comments.txt"))

	got, err := l.CommentsFor("Ruby Hall Clinic")
	if !errors.Is(err, errs.ErrIOFailure) {
		t.Errorf("expected ErrIOFailure, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("in-memory comment should still be returned, got %v", got)
	}
}

func TestFlushSkipsTruncatedCommentLog(t *testing.T) {
	l, _, dir := newTestLedger(t, 1)
	logPath := filepath.Join(dir, "comments.txt")
	before := "Ruby Hall Clinic;asha;first\nRuby Hall Clinic;ravi;second\n"
	writeFile(t, logPath, before)

	if err := l.LoadComments(); err != nil {
		t.Fatalf("LoadComments returned error: %v", err)
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	data, _ := os.ReadFile(logPath)
	if string(data) != before {
		t.Errorf("truncated log must not be rewritten, got %q", string(data))
	}
}

func TestFlushRewritesCommentLog(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)
	logPath := filepath.Join(dir, "comments.txt")
	writeFile(t, logPath, "Ruby Hall Clinic;asha;first\nbad\n")

	if err := l.LoadComments(); err != nil {
		t.Fatalf("LoadComments returned error: %v", err)
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	data, _ := os.ReadFile(logPath)
	if string(data) != "Ruby Hall Clinic;asha;first\n" {
		t.Errorf("unexpected rewritten log %q", string(data))
	}
}

func TestLoadReviewsKeepsLoadedRatingForEmptyCount(t *testing.T) {
	l, idx, dir := newTestLedger(t, 0)
	writeFile(t, filepath.Join(dir, "reviews.txt"),
		"Ruby Hall Clinic;0;0.000000;0.000000\n"+
			"Sahyadri Hospital;2;9.000000;1.000000\n")

	if err := l.LoadReviews(); err != nil {
		t.Fatalf("LoadReviews returned error: %v", err)
	}

	rec, _ := idx.Lookup("Ruby Hall Clinic")
	if rec.Rating != 3.5 || rec.NumReviews != 0 {
		t.Errorf("zero-count line must leave the loaded rating alone: %+v", rec)
	}
	// The stored average disagrees with sum/count; sum/count wins.
	other, _ := idx.Lookup("Sahyadri Hospital")
	if other.NumReviews != 2 || other.Rating != 4.5 {
		t.Errorf("expected 2 reviews averaging 4.5, got %+v", other)
	}
}

func TestAddCommentRejectsOverlongFields(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)

	if _, err := l.AddComment("Ruby Hall Clinic", "asha", strings.Repeat("x", MaxTextBytes+1)); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("long text: expected ErrInvalidInput, got %v", err)
	}
	if _, err := l.AddComment("Ruby Hall Clinic", strings.Repeat("u", MaxUserBytes+1), "hello"); !errors.Is(err, errs.ErrInvalidInput) {
		t.Errorf("long user: expected ErrInvalidInput, got %v", err)
	}
	if _, err := l.AddComment("Ruby Hall Clinic", "asha", strings.Repeat("x", MaxTextBytes)); err != nil {
		t.Errorf("text at the limit should be accepted, got %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "comments.txt"))
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("only the accepted comment should be logged, got %d lines", strings.Count(string(data), "\n"))
	}
}

func TestLoadCommentsSkipsOverlongLine(t *testing.T) {
	l, _, dir := newTestLedger(t, 0)
	logPath := filepath.Join(dir, "comments.txt")
	writeFile(t, logPath,
		"Ruby Hall Clinic;asha;first\n"+
			"Sahyadri Hospital;ravi;"+strings.Repeat("y", 70<<10)+"\n"+
			"Sahyadri Hospital;meera;after the long one\n")

	if err := l.LoadComments(); err != nil {
		t.Fatalf("LoadComments returned error: %v", err)
	}
	if n := len(l.Comments()); n != 2 {
		t.Fatalf("expected 2 comments around the skipped line, got %d", n)
	}

	got, err := l.CommentsFor("Sahyadri Hospital")
	if err != nil {
		t.Fatalf("CommentsFor returned error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "after the long one" {
		t.Errorf("unexpected comments %+v", got)
	}

	if err := l.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	data, _ := os.ReadFile(logPath)
	if !strings.Contains(string(data), "Sahyadri Hospital;meera;after the long one\n") {
		t.Errorf("comment after the long line was lost: %q", string(data))
	}
}

func TestFlushLeavesUnreadableLogAlone(t *testing.T) {
	dir := t.TempDir()
	idx := hospitals.NewIndex(hospitals.DefaultBuckets)
	// A directory opens fine but fails on read.
	logDir := filepath.Join(dir, "comments.txt")
	if err := os.Mkdir(logDir, 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	l := New(idx, Options{ReviewsPath: filepath.Join(dir, "reviews.txt"), CommentsPath: logDir})

	if err := l.LoadComments(); !errors.Is(err, errs.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	if err := l.Flush(); err != nil {
		t.Errorf("Flush should skip the comment log, got %v", err)
	}
	if info, err := os.Stat(logDir); err != nil || !info.IsDir() {
		t.Errorf("comment log path was touched: %v", err)
	}
}

type failingCloser struct{}

func (failingCloser) Close() error { return os.ErrClosed }

func TestCloseIntoReportsCloseFailure(t *testing.T) {
	var err error
	closeInto(failingCloser{}, "comment log", &err)
	if !errors.Is(err, errs.ErrIOFailure) || !errors.Is(err, os.ErrClosed) {
		t.Errorf("expected close failure as ErrIOFailure, got %v", err)
	}

	earlier := errors.New("write failed")
	err = earlier
	closeInto(failingCloser{}, "comment log", &err)
	if err != earlier {
		t.Errorf("earlier error must be kept, got %v", err)
	}
}
