package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"hospital-finder-server/errs"
)

// maxLineBytes bounds one ledger line. Longer lines are skipped whole.
const maxLineBytes = 8 << 10

// readLines calls visit with every non-blank line of r, without its line
// ending, until EOF or until visit returns false. Lines longer than
// maxLineBytes are logged and skipped.
func readLines(r io.Reader, source string, visit func(line string) bool) error {
	br := bufio.NewReaderSize(r, maxLineBytes)
	for n := 1; ; n++ {
		chunk, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			for errors.Is(err, bufio.ErrBufferFull) {
				_, err = br.ReadSlice('\n')
			}
			log.Warn("Skipping over-long line", "file", source, "line", n, "max", maxLineBytes)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			continue
		}

		line := strings.TrimRight(string(chunk), "\r\n")
		if strings.TrimSpace(line) != "" && !visit(line) {
			return nil
		}

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// closeInto closes c and records a close failure in *err unless an earlier
// error is already there.
func closeInto(c io.Closer, what string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing %s: %w: %w", what, errs.ErrIOFailure, cerr)
	}
}
