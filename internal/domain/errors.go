package domain

import "errors"

// ErrorKind classifies date-source failures
type ErrorKind int

const (
	// KindNetwork transport failure or unusable response status
	KindNetwork ErrorKind = iota + 1
	// KindAuth credentials rejected by the service
	KindAuth
	// KindIO local file could not be read
	KindIO
	// KindMalformed payload is not a valid delivery-date document
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindIO:
		return "io"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// SourceError failure from a date source
type SourceError struct {
	Kind ErrorKind
	Err  error
}

// NewSourceError wraps err with kind
func NewSourceError(kind ErrorKind, err error) *SourceError {
	return &SourceError{Kind: kind, Err: err}
}

func (e *SourceError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Kind.String() + " error: " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first SourceError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsKind reports whether err carries a SourceError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
