package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRequestRetriesConnectionFailure(t *testing.T) {
	calls := 0
	resp := &http.Response{StatusCode: http.StatusOK}
	got, err := DoRequest(context.Background(), RetryConfig{MaxRetries: 1, Backoff: time.Millisecond}, func() (*http.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return resp, nil
	})
	require.NoError(t, err)
	assert.Same(t, resp, got)
	assert.Equal(t, 2, calls)
}

func TestDoRequestGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := DoRequest(context.Background(), RetryConfig{MaxRetries: 1, Backoff: time.Millisecond}, func() (*http.Response, error) {
		calls++
		return nil, errors.New("no route to host")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoRequestDoesNotRetryResponses(t *testing.T) {
	calls := 0
	resp := &http.Response{StatusCode: http.StatusTooManyRequests}
	got, err := DoRequest(context.Background(), DefaultRetryConfig(), func() (*http.Response, error) {
		calls++
		return resp, nil
	})
	require.NoError(t, err)
	assert.Same(t, resp, got)
	assert.Equal(t, 1, calls)
}

func TestDoRequestHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := DoRequest(ctx, DefaultRetryConfig(), func() (*http.Response, error) {
		calls++
		return nil, errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, ErrAuth},
		{403, ErrAuth},
		{429, ErrRateLimit},
		{408, ErrTimeout},
		{504, ErrTimeout},
		{400, ErrBadReq},
		{404, ErrBadReq},
		{500, ErrUpstream},
		{503, ErrUpstream},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForStatus(tt.status), "status %d", tt.status)
	}
}
