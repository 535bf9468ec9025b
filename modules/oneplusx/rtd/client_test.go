package oneplusx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// blockingTransport ignores the request context and answers only once released.
type blockingTransport struct {
	release chan struct{}
	body    string
	calls   int32
}

func newBlockingTransport(body string) *blockingTransport {
	return &blockingTransport{release: make(chan struct{}), body: body}
}

func (t *blockingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&t.calls, 1)
	<-t.release
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Request:    req,
	}, nil
}

func newTestClient(httpClient *http.Client) (*profileClient, *metrics.MetricsEngineMock) {
	metricsEngine := &metrics.MetricsEngineMock{}
	metricsEngine.On("RecordProfileRequestTime", mock.Anything).Return()
	return &profileClient{httpClient: httpClient, metricsEngine: metricsEngine}, metricsEngine
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "https://example.com/page", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"s":["s1","s2"],"t":["t1"]}`))
	}))
	defer server.Close()

	client, metricsEngine := newTestClient(server.Client())

	profile, err := client.fetch(context.Background(), server.URL+"/targeting?url=https%3A%2F%2Fexample.com%2Fpage", time.Second)

	require.NoError(t, err)
	assert.Equal(t, &profileResponse{Segments: []string{"s1", "s2"}, Topics: []string{"t1"}}, profile)
	metricsEngine.AssertNumberOfCalls(t, "RecordProfileRequestTime", 1)
}

func TestFetchTransportErrors(t *testing.T) {
	testCases := []struct {
		description string
		status      int
		body        string
	}{
		{
			description: "server error",
			status:      http.StatusInternalServerError,
			body:        `{"s":["s1"]}`,
		},
		{
			description: "not found",
			status:      http.StatusNotFound,
			body:        ``,
		},
		{
			description: "malformed body",
			status:      http.StatusOK,
			body:        `{"s":`,
		},
		{
			description: "unexpected types",
			status:      http.StatusOK,
			body:        `{"s":"s1"}`,
		},
	}

	for _, test := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(test.status)
			w.Write([]byte(test.body))
		}))

		client, _ := newTestClient(server.Client())
		profile, err := client.fetch(context.Background(), server.URL, time.Second)
		server.Close()

		var transportErr *errortypes.TransportError
		assert.ErrorAs(t, err, &transportErr, test.description)
		assert.Nil(t, profile, test.description)
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, _ := newTestClient(&http.Client{})
	profile, err := client.fetch(context.Background(), serverURL, time.Second)

	var transportErr *errortypes.TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Nil(t, profile)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"s":["late"]}`))
	}))
	defer server.Close()
	defer close(release)

	client, metricsEngine := newTestClient(server.Client())
	profile, err := client.fetch(context.Background(), server.URL, 50*time.Millisecond)

	var timeoutErr *errortypes.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
	assert.Nil(t, profile)
	metricsEngine.AssertNumberOfCalls(t, "RecordProfileRequestTime", 1)
}

func TestFetchTimeoutWhenTransportIgnoresContext(t *testing.T) {
	transport := newBlockingTransport(`{"s":["late"]}`)
	client, _ := newTestClient(&http.Client{Transport: transport})

	startTime := time.Now()
	profile, err := client.fetch(context.Background(), "http://profiles.example.com/targeting", 50*time.Millisecond)
	elapsed := time.Since(startTime)
	close(transport.release)

	var timeoutErr *errortypes.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
	assert.Nil(t, profile)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&transport.calls))
}

func TestFetchCancelledContext(t *testing.T) {
	transport := newBlockingTransport(`{}`)
	defer close(transport.release)
	client, _ := newTestClient(&http.Client{Transport: transport})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	profile, err := client.fetch(ctx, "http://profiles.example.com/targeting", time.Second)

	var transportErr *errortypes.TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Nil(t, profile)
}
