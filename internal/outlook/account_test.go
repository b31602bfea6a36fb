package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/oauth2"
)

// recordedRequest captures one request the test server saw, with the
// body already read.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// testServer wraps an httptest server and records every request so
// tests can assert on the wire traffic after the call under test.
type testServer struct {
	*httptest.Server
	requests []recordedRequest
}

func (s *testServer) lastRequest(t *testing.T) recordedRequest {
	t.Helper()
	if len(s.requests) == 0 {
		t.Fatal("no requests were made")
	}
	return s.requests[len(s.requests)-1]
}

func newTestAccount(t *testing.T, handler http.HandlerFunc) (*Account, *testServer) {
	t.Helper()

	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	account := NewAccount("test-token", WithBaseURL(ts.URL))
	return account, ts
}

func respondJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		t.Errorf("failed to write response: %v", err)
	}
}

func TestAccount_BearerToken(t *testing.T) {
	account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, http.StatusOK, `{"value":[]}`)
	})

	_, err := account.Folders().All(context.Background())
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestAccount_SetToken(t *testing.T) {
	account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, http.StatusOK, `{"value":[]}`)
	})

	account.SetToken("rotated-token")

	_, err := account.Folders().All(context.Background())
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Equal(t, "Bearer rotated-token", req.Header.Get("Authorization"))
}

func TestAccount_TokenSource(t *testing.T) {
	_, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, http.StatusOK, `{"value":[]}`)
	})
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "source-token"})
	account := NewAccountFromTokenSource(source, WithBaseURL(server.URL))

	_, err := account.Folders().All(context.Background())
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Equal(t, "Bearer source-token", req.Header.Get("Authorization"))
}

// An empty token is accepted at construction time; the failure surfaces
// as ErrAuthentication on the first rejected call.
func TestAccount_EmptyTokenDeferredFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	account := NewAccount("", WithBaseURL(server.URL))

	_, err := account.Messages().Get(context.Background(), "msg1")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAccount_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // nothing is listening anymore

	account := NewAccount("test-token", WithBaseURL(url))

	_, err := account.Folders().All(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
}

func TestAccount_MalformedResponseBody(t *testing.T) {
	account, _ := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, http.StatusOK, `{"value": [`)
	})

	_, err := account.Folders().All(context.Background())
	assert.ErrorIs(t, err, ErrServer)
}

func newDebugLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

// Every request span ends with a status: Ok on success, Error with the
// failure recorded as an event otherwise.
func TestAccount_SpanOutcome(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, status, `{"value":[]}`)
	}))
	t.Cleanup(server.Close)

	account := NewAccount("test-token",
		WithBaseURL(server.URL),
		WithTracer(provider.Tracer("outlook")),
	)

	_, err := account.Folders().All(context.Background())
	require.NoError(t, err)

	status = http.StatusNotFound
	_, err = account.Folders().All(context.Background())
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "Ok", spans[0].Status().Code.String())
	assert.Empty(t, spans[0].Events())

	assert.Equal(t, "Error", spans[1].Status().Code.String())
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

// A failed request logs exactly one outcome line.
func TestAccount_RequestLogging(t *testing.T) {
	logger, buf := newDebugLogger()

	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = io.WriteString(w, `{"value":[]}`)
		}
	}))
	t.Cleanup(server.Close)

	account := NewAccount("test-token", WithBaseURL(server.URL), WithLogger(logger))

	_, err := account.Folders().All(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "request completed")
	assert.NotContains(t, buf.String(), "request failed")

	buf.Reset()
	status = http.StatusNotFound
	_, err = account.Folders().All(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "request failed")
	assert.NotContains(t, buf.String(), "request completed")
}

func TestAccount_TokenNeverLogged(t *testing.T) {
	logger, buf := newDebugLogger()

	NewAccount("super-secret-token", WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, "account configured")
	assert.Contains(t, out, "[token:18 chars]")
	assert.False(t, strings.Contains(out, "super-secret-token"),
		"raw token must not appear in logs, got: %s", out)
}

func TestAccount_AutoReplyMessage(t *testing.T) {
	account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, http.StatusOK, `{
			"status": "alwaysEnabled",
			"internalReplyMessage": "Out until Monday.",
			"externalReplyMessage": "Out of office."
		}`)
	})

	message, err := account.AutoReplyMessage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Out until Monday.", message)

	req := server.lastRequest(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/me/mailboxSettings/automaticRepliesSetting", req.Path)
}

func TestAccount_SetAutoReply(t *testing.T) {
	account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := account.SetAutoReply(context.Background(), AutoReplySettings{
		Message: "Out until Monday.",
	})
	require.NoError(t, err)

	req := server.lastRequest(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/me/mailboxSettings", req.Path)

	var payload struct {
		Setting struct {
			Status               string `json:"status"`
			ExternalAudience     string `json:"externalAudience"`
			InternalReplyMessage string `json:"internalReplyMessage"`
			ExternalReplyMessage string `json:"externalReplyMessage"`
		} `json:"automaticRepliesSetting"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &payload))
	assert.Equal(t, "alwaysEnabled", payload.Setting.Status)
	assert.Equal(t, "all", payload.Setting.ExternalAudience)
	assert.Equal(t, "Out until Monday.", payload.Setting.InternalReplyMessage)
	// External message defaults to the internal one
	assert.Equal(t, "Out until Monday.", payload.Setting.ExternalReplyMessage)
}

func TestAccount_SetAutoReply_Scheduled(t *testing.T) {
	account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	err := account.SetAutoReply(context.Background(), AutoReplySettings{
		Message:        "Away.",
		Status:         AutoReplyScheduled,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
	})
	require.NoError(t, err)

	var payload struct {
		Setting struct {
			Status string `json:"status"`
			Start  struct {
				DateTime string `json:"dateTime"`
				TimeZone string `json:"timeZone"`
			} `json:"scheduledStartDateTime"`
		} `json:"automaticRepliesSetting"`
	}
	require.NoError(t, json.Unmarshal(server.lastRequest(t).Body, &payload))
	assert.Equal(t, "scheduled", payload.Setting.Status)
	assert.Equal(t, "2026-09-01T09:00:00", payload.Setting.Start.DateTime)
	assert.Equal(t, "UTC", payload.Setting.Start.TimeZone)
}

func TestAccount_SetAutoReply_Validation(t *testing.T) {
	start := time.Now()

	tests := []struct {
		name     string
		settings AutoReplySettings
	}{
		{
			name: "start without end",
			settings: AutoReplySettings{
				Message:        "Away.",
				ScheduledStart: &start,
			},
		},
		{
			name: "scheduled without window",
			settings: AutoReplySettings{
				Message: "Away.",
				Status:  AutoReplyScheduled,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, server := newTestAccount(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			err := account.SetAutoReply(context.Background(), tt.settings)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if len(server.requests) != 0 {
				t.Errorf("expected no requests, got %d", len(server.requests))
			}
		})
	}
}
