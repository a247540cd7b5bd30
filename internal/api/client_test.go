package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/notify"
)

type notice struct {
	text     string
	severity notify.Severity
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recordingNotifier) Show(text string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{text: text, severity: severity})
}

func (r *recordingNotifier) all() []notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notice(nil), r.notices...)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) (*Client, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	client, err := New(baseURL, Options{Logger: logging.Discard(), Notifier: notifier, Tokens: tokens})
	require.NoError(t, err)
	return client, notifier
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("  ", Options{})
	assert.Error(t, err)
}

func TestExecutePostEncodesBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ticket/buy", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "G101", body["trainId"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, notifier := newTestClient(t, server.URL+"/api/", staticToken("tok-1"))
	payload, err := client.Execute(context.Background(), Request{
		Endpoint: "/ticket/buy",
		Method:   http.MethodPost,
		Body:     map[string]string{"trainId": "G101"},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(payload))
	assert.Empty(t, notifier.all())
}

func TestExecuteGetAppendsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "Beijing", r.URL.Query().Get("startStation"))
		assert.Equal(t, "上海", r.URL.Query().Get("endStation"))
		w.Write([]byte(`{"accessible":true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, staticToken(""))
	var out struct {
		Accessible bool `json:"accessible"`
	}
	err := client.Call(context.Background(), Request{
		Endpoint: "/route/accessibility",
		Method:   http.MethodGet,
		Query:    map[string]string{"startStation": "Beijing", "endStation": "上海"},
	}, &out)

	require.NoError(t, err)
	assert.True(t, out.Accessible)
}

func TestExecuteServerFailureUsesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"sold out"}`))
	}))
	defer server.Close()

	client, notifier := newTestClient(t, server.URL, nil)
	_, err := client.Execute(context.Background(), Request{Endpoint: "/ticket/buy", Method: http.MethodPost, Body: map[string]string{}})

	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "sold out", apiErr.Message)
	assert.Equal(t, []notice{{text: "sold out", severity: notify.SeverityError}}, notifier.all())
}

func TestExecuteServerFailureGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client, notifier := newTestClient(t, server.URL, nil)
	_, err := client.Execute(context.Background(), Request{Endpoint: "/train/G1"})

	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, MessageRequestFailed, UserMessage(err))
	assert.Len(t, notifier.all(), 1)
}

func TestExecuteParseFailure(t *testing.T) {
	for name, body := range map[string]string{"html": "<html>oops</html>", "empty": ""} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(body))
			}))
			defer server.Close()

			client, notifier := newTestClient(t, server.URL, nil)
			_, err := client.Execute(context.Background(), Request{Endpoint: "/ticket/orders"})

			assert.Equal(t, KindParse, KindOf(err))
			require.Len(t, notifier.all(), 1)
			assert.Equal(t, notify.SeverityError, notifier.all()[0].severity)
		})
	}
}

func TestCallShapeMismatchIsParseFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":"not a list"}`))
	}))
	defer server.Close()

	client, notifier := newTestClient(t, server.URL, nil)
	var out struct {
		Orders []string `json:"orders"`
	}
	err := client.Call(context.Background(), Request{Endpoint: "/ticket/orders"}, &out)

	assert.Equal(t, KindParse, KindOf(err))
	assert.Len(t, notifier.all(), 1)
}

func TestExecuteNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, notifier := newTestClient(t, url, nil)
	_, err := client.Execute(context.Background(), Request{Endpoint: "/login", Method: http.MethodPost, Body: map[string]any{}})

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.NotEmpty(t, apiErr.Message)
	notices := notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, apiErr.Message, notices[0].text)
}

func TestConcurrentCallsExecuteIndependently(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Execute(context.Background(), Request{Endpoint: "/ticket/buy", Method: http.MethodPost, Body: map[string]string{}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, hits)
}
