package output

import (
	"fmt"
	"io"
	"os"
)

// Stdout path value selecting standard output
const Stdout = "-"

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Open returns the destination for the calendar document.
//
// An empty path or "-" selects stdout. Otherwise the file is created (or truncated) right
// away, so an unwritable path fails before any delivery dates are fetched.
func Open(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == Stdout {
		return nopCloser{stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create %s: %w", path, err)
	}
	return &file{f: f, path: path}, nil
}

// file adds the path to write and close errors
type file struct {
	f    *os.File
	path string
}

func (w *file) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("could not write %s: %w", w.path, err)
	}
	return n, nil
}

func (w *file) Close() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", w.path, err)
	}
	return nil
}

// WriteDocument writes doc to w and closes it
func WriteDocument(w io.WriteCloser, doc string) error {
	if _, err := io.WriteString(w, doc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
