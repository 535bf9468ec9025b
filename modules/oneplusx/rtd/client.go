package oneplusx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/metrics"
	"golang.org/x/net/context/ctxhttp"
)

// profileResponse is the body returned by the 1plusX profiling service.
type profileResponse struct {
	Segments []string `json:"s"`
	Topics   []string `json:"t"`
}

type fetchResult struct {
	response *profileResponse
	err      error
}

type profileClient struct {
	httpClient    *http.Client
	metricsEngine metrics.MetricsEngine
}

// fetch makes a single GET request to profileURL. If the service doesn't answer within
// timeout a TimeoutError is returned and the response arriving later is discarded.
func (c *profileClient) fetch(ctx context.Context, profileURL string, timeout time.Duration) (*profileResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultCh := make(chan fetchResult, 1)
	startTime := time.Now()
	go func() {
		resp, err := c.do(ctx, profileURL)
		resultCh <- fetchResult{response: resp, err: err}
	}()

	defer func() {
		c.metricsEngine.RecordProfileRequestTime(time.Since(startTime))
	}()

	select {
	case res := <-resultCh:
		return res.response, res.err
	case <-ctx.Done():
		return nil, contextError(ctx.Err(), timeout)
	}
}

func (c *profileClient) do(ctx context.Context, profileURL string) (*profileResponse, error) {
	httpReq, err := http.NewRequest(http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("failed to create profile request: %v", err)}
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := ctxhttp.Do(ctx, c.httpClient, httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr, 0)
		}
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("profile request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("failed to read profile response: %v", err)}
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("unexpected status code %d from profiling service", httpResp.StatusCode)}
	}

	var profile profileResponse
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, &errortypes.TransportError{Message: fmt.Sprintf("failed to parse profile response: %v", err)}
	}

	return &profile, nil
}

func contextError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if timeout > 0 {
			return &errortypes.TimeoutError{Message: fmt.Sprintf("profile request timed out after %s", timeout)}
		}
		return &errortypes.TimeoutError{Message: "profile request timed out"}
	}
	return &errortypes.TransportError{Message: fmt.Sprintf("profile request cancelled: %v", err)}
}
