package gateway

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aasan/postgang/internal/domain"
)

// StdinPath reads the document from standard input
const StdinPath = "-"

// FileSource reads delivery dates from a local JSON document
type FileSource struct {
	path  string
	stdin io.Reader
}

// NewFileSource creates a FileSource for path; "-" means standard input
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:  path,
		stdin: os.Stdin,
	}
}

// DeliveryDates reads the document. The postal code is not checked against the file contents.
func (s *FileSource) DeliveryDates(_ context.Context, _ domain.PostalCode) (domain.DeliveryDateSet, error) {
	data, err := s.read()
	if err != nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindIO, err)
	}
	return decodeDeliveryDates(data)
}

func (s *FileSource) read() ([]byte, error) {
	if s.path == StdinPath {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("could not read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", s.path, err)
	}
	return data, nil
}
