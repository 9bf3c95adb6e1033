package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aasan/postgang/internal/config"
	"github.com/aasan/postgang/internal/domain"
)

// MockGenerator is a test mock for Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Execute(ctx context.Context, code domain.PostalCode) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func newTestServer(t *testing.T, gen Generator) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultServeConfig()
	cfg.Codes = []string{"0357"}

	s := New(cfg, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// --- feed endpoint tests ---

func TestHandleFeed_Success(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", nil).Once()
	_, ts := newTestServer(t, gen)

	resp, body := get(t, ts.URL+"/postgang/0357.ics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "postgang-0357.ics")
	assert.Equal(t, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", body)

	// second request comes from the cache
	resp, body = get(t, ts.URL+"/postgang/0357")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", body)
	gen.AssertNumberOfCalls(t, "Execute", 1)
}

func TestHandleFeed_InvalidCode(t *testing.T) {
	gen := new(MockGenerator)
	_, ts := newTestServer(t, gen)

	for _, path := range []string{"/postgang/357", "/postgang/abcd.ics", "/postgang/10000"} {
		resp, body := get(t, ts.URL+path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Contains(t, body, "invalid postal code")
	}
	gen.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandleFeed_SourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"auth", domain.NewSourceError(domain.KindAuth, errors.New("401")), "rejected the configured credentials"},
		{"network", domain.NewSourceError(domain.KindNetwork, errors.New("timeout")), "could not get delivery dates"},
		{"malformed", domain.NewSourceError(domain.KindMalformed, errors.New("bad json")), "could not get delivery dates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("", tt.err)
			_, ts := newTestServer(t, gen)

			resp, body := get(t, ts.URL+"/postgang/0357")
			assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
			assert.Contains(t, body, tt.message)
		})
	}
}

func TestHandleFeed_LogsSourceErrorOnce(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).
		Return("", domain.NewSourceError(domain.KindNetwork, errors.New("timeout")))

	var logs bytes.Buffer
	s := New(config.DefaultServeConfig(), gen, slog.New(slog.NewTextHandler(&logs, nil)))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp, _ := get(t, ts.URL+"/postgang/0357")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(logs.String(), "feed lookup failed"))
	assert.Contains(t, logs.String(), "kind=network")
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, new(MockGenerator))

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestMetrics(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("doc", nil)
	_, ts := newTestServer(t, gen)

	get(t, ts.URL+"/postgang/0357")
	get(t, ts.URL+"/postgang/0357")
	get(t, ts.URL+"/postgang/bad")

	resp, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `postgang_feed_requests_total{status="200"} 2`)
	assert.Contains(t, body, `postgang_feed_requests_total{status="400"} 1`)
	assert.Contains(t, body, "postgang_feed_cache_hits_total 1")
	assert.Contains(t, body, "postgang_source_fetch_seconds_count 1")
}

// --- Refresh tests ---

func TestRefresh_KeepsOldEntryOnFailure(t *testing.T) {
	gen := new(MockGenerator)
	s, _ := newTestServer(t, gen)

	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("v1", nil).Once()
	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("", errors.New("down")).Once()

	s.Refresh(context.Background(), []domain.PostalCode{"0357"})
	s.Refresh(context.Background(), []domain.PostalCode{"0357"})

	doc, err := s.Feed(context.Background(), "0357")
	require.NoError(t, err)
	assert.Equal(t, "v1", doc)
	gen.AssertNumberOfCalls(t, "Execute", 2)
}

func TestRefresh_StopsOnCanceledContext(t *testing.T) {
	gen := new(MockGenerator)
	s, _ := newTestServer(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Refresh(ctx, []domain.PostalCode{"0357", "7800"})
	gen.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestFeed_ExpiresAfterTTL(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Execute", mock.Anything, domain.PostalCode("0357")).Return("doc", nil)

	cfg := config.DefaultServeConfig()
	cfg.CacheTTL = 20 * time.Millisecond
	s := New(cfg, gen, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	_, err := s.Feed(context.Background(), "0357")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = s.Feed(context.Background(), "0357")
	require.NoError(t, err)

	gen.AssertNumberOfCalls(t, "Execute", 2)
}

// --- Run tests ---

func TestRun_ShutsDownOnCancel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Execute", mock.Anything, mock.Anything).Return("doc", nil).Maybe()

	cfg := config.DefaultServeConfig()
	cfg.Listen = "127.0.0.1:0"
	s := New(cfg, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	cfg := config.DefaultServeConfig()
	cfg.Refresh = "not a schedule"
	s := New(cfg, new(MockGenerator), slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh schedule")
}
