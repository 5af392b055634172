package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

const maxLineSize = 16 * 1024 * 1024

// Record is one labeled row of a corpus file
type Record struct {
	Label       string
	Title       string
	Body        string
	FileNames   []string
	FolderNames []string
}

// Text returns the title and body joined for embedding
func (r Record) Text() string {
	if r.Body == "" {
		return r.Title
	}
	return r.Title + "\n\n" + r.Body
}

// Reader reads records from a corpus file
type Reader struct {
	scanner *bufio.Scanner
	kind    Kind
	line    int
}

// NewReader reads the header from r and detects the column layout
func NewReader(r io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, errors.New("empty corpus file")
	}

	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	var kind Kind
	switch {
	case slices.Equal(header, issueColumns):
		kind = Issues
	case slices.Equal(header, pullColumns):
		kind = PullRequests
	default:
		return nil, fmt.Errorf("unrecognized corpus header %q", strings.Join(header, ","))
	}

	return &Reader{scanner: scanner, kind: kind, line: 1}, nil
}

// Kind returns the layout detected from the header
func (r *Reader) Kind() Kind {
	return r.kind
}

// Next returns the next record, or io.EOF after the last one.
// Blank lines are skipped.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		want := len(r.kind.Columns())
		if len(fields) != want {
			return Record{}, fmt.Errorf("line %d: expected %d fields, got %d", r.line, want, len(fields))
		}

		rec := Record{Label: fields[0], Title: fields[1], Body: fields[2]}
		if r.kind == PullRequests {
			rec.FileNames = splitList(fields[3])
			rec.FolderNames = splitList(fields[4])
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return Record{}, io.EOF
}

// ReadFile loads every record of the corpus at path
func ReadFile(path string) ([]Record, Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Issues, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, Issues, fmt.Errorf("%s: %w", path, err)
	}

	var records []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, r.Kind(), nil
		}
		if err != nil {
			return nil, r.Kind(), fmt.Errorf("%s: %w", path, err)
		}
		records = append(records, rec)
	}
}
