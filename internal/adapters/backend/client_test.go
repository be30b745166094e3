package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/binwatch/internal/domain/bins"
	apperrors "github.com/target/binwatch/internal/errors"
)

type countingSink struct {
	mu   sync.Mutex
	tags []map[string]string
}

func (s *countingSink) Count(_ string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tags)
}

func (s *countingSink) Timing(string, time.Duration, map[string]string) {}

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		RetryLimit: retries,
		Backoff:    time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_ValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url", "/relative"} {
		_, err := NewClient(ClientOptions{BaseURL: raw})
		require.Error(t, err, raw)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestClient_ListBins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/bins", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": 1, "name": "Market", "latitude": -21.4333, "longitude": 47.0833},
			{"id": 2, "name": "Station", "latitude": "-21.4380", "longitude": " 47.0870 "}
		]`)
	}))
	defer srv.Close()

	sink := &countingSink{}
	c := newTestClient(t, srv, 0)
	c.metrics = sink

	list, err := c.ListBins(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "Station", list[1].Name)
	assert.InDelta(t, -21.4380, float64(list[1].Latitude), 1e-9)
	assert.InDelta(t, 47.0870, float64(list[1].Longitude), 1e-9)
	require.Len(t, sink.tags, 1)
	assert.Equal(t, "success", sink.tags[0]["result"])
}

func TestClient_ListBins_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv, 0).ListBins(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestClient_ListBins_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[{"id": 9, "name": "Late", "latitude": 0, "longitude": 0}]`)
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv, 2).ListBins(context.Background())

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ListBins_GivesUpAfterRetryLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 1).ListBins(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ListBins_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 3).ListBins(context.Background())

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ListBins_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id": 1, "latitude": "north"}]`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 2).ListBins(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestClient_SubmitReport(t *testing.T) {
	var got bins.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/reports", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		if !assert.NoError(t, err) {
			return
		}
		assert.JSONEq(t, `{"bin_id":4,"severity":"damaged"}`, string(body))
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, 0).SubmitReport(context.Background(), bins.Report{BinID: 4, Severity: bins.SeverityDamaged})

	require.NoError(t, err)
	assert.Equal(t, bins.Report{BinID: 4, Severity: bins.SeverityDamaged}, got)
}

func TestClient_SubmitReport_NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, 3).SubmitReport(context.Background(), bins.Report{BinID: 1, Severity: bins.SeverityFull})

	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ListBins_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv, 5).ListBins(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ErrorBodyTrimmedOnRuneBoundary(t *testing.T) {
	// One ASCII byte first so the limit falls inside a three-byte rune.
	body := "x" + strings.Repeat("€", maxErrorBodyBytes)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	err := newTestClient(t, srv, 0).SubmitReport(context.Background(), bins.Report{BinID: 1, Severity: bins.SeverityFull})

	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), "x€€")
}

func TestErrorSnippet(t *testing.T) {
	assert.Equal(t, "short", errorSnippet([]byte("  short \n")))

	long := strings.Repeat("a", maxErrorBodyBytes-1) + "é"
	got := errorSnippet([]byte(long))
	assert.Equal(t, strings.Repeat("a", maxErrorBodyBytes-1), got)
	assert.True(t, utf8.ValidString(got))
}

func TestClient_ListBins_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "["+strings.Repeat(" ", maxResponseBodyBytes)+"]")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 2).ListBins(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Contains(t, err.Error(), "exceeds")
	assert.NotContains(t, err.Error(), "decode bins response")
}
