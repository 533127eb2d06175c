package telegram

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	calls := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
			}
			return &http.Response{StatusCode: http.StatusOK}, nil
		}),
		maxRetries: 3,
		backoff:    time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, "http://api.invalid/getMe", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	calls := 0
	rt := &retryTransport{
		base: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("bad certificate")
		}),
		maxRetries: 3,
		backoff:    time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, "http://api.invalid/getMe", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBuildHTTPClientAddsPollTimeout(t *testing.T) {
	c := BuildHTTPClient(HTTPClientOptions{Timeout: 5 * time.Second}, 10*time.Second)
	assert.Equal(t, 15*time.Second, c.Timeout)
}
