package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSummaryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-call-summary" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchSummaryUnwrapsDoubleEncodedPayload(t *testing.T) {
	t.Parallel()

	server := newSummaryServer(t, http.StatusOK, `{ "summary": "{\"status\":\"completed\",\"action_taken\":\"booked\",\"follow_up_required\":false,\"notes\":\"\",\"summary\":\"done\"}" }`)
	client := NewClient(Config{BaseURL: server.URL}, nil)

	raw, err := client.FetchSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"status":"completed","action_taken":"booked","follow_up_required":false,"notes":"","summary":"done"}`, raw)
}

func TestFetchSummaryPassesThroughPlainText(t *testing.T) {
	t.Parallel()

	server := newSummaryServer(t, http.StatusOK, `{ "summary": "not json" }`)
	raw, err := NewClient(Config{BaseURL: server.URL}, nil).FetchSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, "not json", raw)
}

func TestFetchSummaryAcceptsObjectAndMissingField(t *testing.T) {
	t.Parallel()

	server := newSummaryServer(t, http.StatusOK, `{"summary":{"status":"completed"}}`)
	raw, err := NewClient(Config{BaseURL: server.URL}, nil).FetchSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"status":"completed"}`, raw)

	server = newSummaryServer(t, http.StatusOK, `{}`)
	raw, err = NewClient(Config{BaseURL: server.URL}, nil).FetchSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", raw)
}

func TestFetchSummaryNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := newSummaryServer(t, http.StatusInternalServerError, `oops`)
	_, err := NewClient(Config{BaseURL: server.URL}, nil).FetchSummary(context.Background())
	require.Error(t, err)
	require.Equal(t, "HTTP 500: Internal Server Error", err.Error())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestFetchSummaryInvalidBody(t *testing.T) {
	t.Parallel()

	server := newSummaryServer(t, http.StatusOK, `<html>`)
	_, err := NewClient(Config{BaseURL: server.URL}, nil).FetchSummary(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode summary response")
}

func TestFetchSummaryHonorsTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(Config{BaseURL: server.URL, RequestTimeout: 20 * time.Millisecond}, nil)
	_, err := client.FetchSummary(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to fetch summary")
}

func TestStatusErrorUnknownCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "HTTP 599: Unknown Status", (&StatusError{Code: 599}).Error())
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	got, err := buildURL("https://backend.example.com/", "get-call-summary")
	require.NoError(t, err)
	require.Equal(t, "https://backend.example.com/get-call-summary", got)

	_, err = buildURL("", "/x")
	require.Error(t, err)

	_, err = buildURL("backend.example.com", "/x")
	require.Error(t, err)
}

func TestChannelURL(t *testing.T) {
	t.Parallel()

	got, err := channelURL("https://backend.example.com", "/ws")
	require.NoError(t, err)
	require.Equal(t, "wss://backend.example.com/ws", got)

	got, err = channelURL("http://localhost:8080/", "/ws")
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/ws", got)

	got, err = channelURL("wss://already.example.com", "/ws")
	require.NoError(t, err)
	require.Equal(t, "wss://already.example.com/ws", got)
}
