package domain

import (
	"errors"
	"log/slog"

	"golang.org/x/net/http/httpguts"
)

const redacted = "APIKey(Sensitive)"

// APIKey Bring API key. Its value never shows up in formatted or logged output.
type APIKey string

func (k APIKey) String() string {
	return redacted
}

// GoString keeps %#v from leaking the key
func (k APIKey) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer
func (k APIKey) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Reveal returns the raw key for the request header
func (k APIKey) Reveal() string {
	return string(k)
}

// Credentials Bring API identity
type Credentials struct {
	APIUID string
	APIKey APIKey
}

// Validate checks that both values are present and usable as HTTP header values
func (c Credentials) Validate() error {
	if c.APIUID == "" {
		return errors.New("API UID is not set")
	}
	if c.APIKey == "" {
		return errors.New("API key is not set")
	}
	if !httpguts.ValidHeaderFieldValue(c.APIUID) {
		return errors.New("API UID is not a valid HTTP header value")
	}
	if !httpguts.ValidHeaderFieldValue(c.APIKey.Reveal()) {
		return errors.New("API key is not a valid HTTP header value")
	}
	return nil
}
