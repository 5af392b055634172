package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kavirubc/gh-labeler/pkg/models"
)

// Writer writes labeled items to a corpus file.
// A Writer is not safe for concurrent use.
type Writer struct {
	kind   Kind
	buf    *bufio.Writer
	closer io.Closer
	count  int
}

// NewWriter writes the header for kind to w and returns a Writer
func NewWriter(w io.Writer, kind Kind) (*Writer, error) {
	cw := &Writer{kind: kind, buf: bufio.NewWriter(w)}
	if err := cw.writeLine(kind.Columns()); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return cw, nil
}

// Create creates (or truncates) the file at path, making parent
// directories as needed.
func Create(path string, kind Kind) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w, err := NewWriter(f, kind)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Kind returns the column layout the writer produces
func (w *Writer) Kind() Kind {
	return w.kind
}

// Write appends one record. Pull request writers require items that
// carry files; issue writers accept any item and ignore its files.
func (w *Writer) Write(label string, item models.Item) error {
	issue := item.Base()
	fields := []string{Sanitize(label), Sanitize(issue.Title), Sanitize(issue.Body)}

	if w.kind == PullRequests {
		hf, ok := item.(models.HasFiles)
		if !ok {
			return fmt.Errorf("item #%d has no file list", issue.Number)
		}
		files := hf.Files()
		fields = append(fields, joinList(files), joinList(FolderNames(files)))
	}

	if err := w.writeLine(fields); err != nil {
		return fmt.Errorf("failed to write #%d: %w", issue.Number, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written, excluding the header
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered records to the underlying writer
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Close flushes and closes the file opened by Create
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

func (w *Writer) writeLine(fields []string) error {
	if _, err := w.buf.WriteString(strings.Join(fields, "\t")); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}
