package actionlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/devicelab-dev/droidreplay/pkg/core"
)

const maxLineSize = 1 << 20

// ParseError reports a log line that could not be used.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Record is a decoded entry with its 1-based source line.
type Record struct {
	Line  int
	Entry Entry
}

// Parse reads a log in order. Blank lines are ignored. Lines that fail to
// decode or validate are returned as warnings and parsing continues; the
// error is non-nil only when r itself fails.
func Parse(r io.Reader, path string) ([]Record, []*ParseError, error) {
	var (
		records  []Record
		warnings []*ParseError
	)

	br := bufio.NewReader(r)
	line := 0
	for {
		raw, n, tooLong, err := readLine(br)
		if n > 0 {
			line++
		}
		if tooLong {
			lineErr := core.ErrInvalidEntry.WithMessage(fmt.Sprintf("line longer than %d bytes", maxLineSize))
			warnings = append(warnings, &ParseError{Path: path, Line: line, Message: lineErr.Error(), Err: lineErr})
		} else if text := bytes.TrimSpace(raw); len(text) > 0 {
			e, decodeErr := Unmarshal(text)
			if decodeErr != nil {
				warnings = append(warnings, &ParseError{Path: path, Line: line, Message: decodeErr.Error(), Err: decodeErr})
			} else {
				records = append(records, Record{Line: line, Entry: e})
			}
		}

		if err == io.EOF {
			return records, warnings, nil
		}
		if err != nil {
			return records, warnings, fmt.Errorf("failed to read action log: %w", err)
		}
	}
}

// readLine reads through the next newline. n counts every byte consumed. Past
// maxLineSize the content is dropped and tooLong is set.
func readLine(br *bufio.Reader) (line []byte, n int, tooLong bool, err error) {
	for {
		var chunk []byte
		chunk, err = br.ReadSlice('\n')
		n += len(chunk)
		if len(line)+len(chunk) > maxLineSize {
			tooLong = true
		}
		if !tooLong {
			line = append(line, chunk...)
		}
		if err != bufio.ErrBufferFull {
			return line, n, tooLong, err
		}
	}
}

// ParseFile parses the log at path.
func ParseFile(path string) ([]Record, []*ParseError, error) {
	f, err := os.Open(path) //#nosec G304 -- path is user-provided log file
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Entries strips line numbers from records.
func Entries(records []Record) []Entry {
	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = r.Entry
	}
	return out
}
