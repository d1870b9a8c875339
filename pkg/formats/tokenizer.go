package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned when a line does not have the expected shape.
var ErrMalformedLine = errors.New("malformed line")

// maxLineSize bounds a single line; record lines of dense meshes list every
// incident face, so the bufio default of 64KiB is too small.
const maxLineSize = 16 << 20

// maxPrealloc caps the slice capacity taken from header counts. Slices grow
// past it by append as lines actually arrive.
const maxPrealloc = 1 << 16

func capHint(n int) int { return min(n, maxPrealloc) }

// lineReader reads a text format line by line, tracking line numbers for
// error messages.
type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc}
}

// fields returns the whitespace-separated fields of the next line that is
// neither blank nor a '#' comment. It returns io.EOF at end of input.
func (lr *lineReader) fields() ([]string, error) {
	for {
		line, err := lr.raw()
		if err != nil {
			return nil, err
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		f := strings.Fields(line)
		if len(f) > 0 {
			return f, nil
		}
	}
}

// raw returns the next line verbatim, without skipping blank lines.
func (lr *lineReader) raw() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	lr.line++
	return strings.TrimRight(lr.sc.Text(), "\r"), nil
}

// errorf builds a line-numbered error wrapping sentinel.
func (lr *lineReader) errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", sentinel, lr.line, fmt.Sprintf(format, args...))
}

func parseInts(fields []string) ([]int, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrMalformedLine, f)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedLine, f)
		}
		out[i] = v
	}
	return out, nil
}

// formatFloat uses the shortest representation that parses back to x.
func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
