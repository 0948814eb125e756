package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sweeparr/sweeparr/pkg/http/mocks"
)

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestNewRetryingClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := NewRetryingClient()
		assert.Equal(t, http.DefaultClient, c.client)
		assert.Equal(t, DefaultMaxRetries, c.maxRetries)
		assert.Equal(t, DefaultBaseBackoff, c.baseBackoff)
	})

	t.Run("options", func(t *testing.T) {
		inner := &http.Client{}
		c := NewRetryingClient(
			WithMaxRetries(5),
			WithBaseBackoff(time.Millisecond),
			WithHTTPClient(inner),
		)
		assert.Equal(t, inner, c.client)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, time.Millisecond, c.baseBackoff)
	})
}

func TestRetryingClient_Do(t *testing.T) {
	newRequest := func(t *testing.T) *http.Request {
		req, err := http.NewRequest(http.MethodGet, "https://sonarr.local/api/v3/series", nil)
		require.NoError(t, err)
		return req
	}

	t.Run("success passes through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req := newRequest(t)
		mhttp.EXPECT().Do(req).Return(response(http.StatusOK), nil)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("connection errors are retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req := newRequest(t)
		gomock.InOrder(
			mhttp.EXPECT().Do(req).Return(nil, errors.New("connection reset")),
			mhttp.EXPECT().Do(req).Return(response(http.StatusOK), nil),
		)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("5xx is retried until exhaustion", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req := newRequest(t)
		mhttp.EXPECT().Do(req).Return(response(http.StatusBadGateway), nil).Times(3)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		assert.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("401 is not retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req := newRequest(t)
		mhttp.EXPECT().Do(req).Return(response(http.StatusUnauthorized), nil).Times(1)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("429 honors Retry-After", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		throttled := response(http.StatusTooManyRequests)
		throttled.Header.Set("Retry-After", "0")

		req := newRequest(t)
		gomock.InOrder(
			mhttp.EXPECT().Do(req).Return(throttled, nil),
			mhttp.EXPECT().Do(req).Return(response(http.StatusOK), nil),
		)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		start := time.Now()
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("custom retry policy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req := newRequest(t)
		mhttp.EXPECT().Do(req).Return(response(http.StatusNotFound), nil).Times(2)

		retryNotFound := func(resp *http.Response) bool {
			return resp.StatusCode == http.StatusNotFound
		}

		client := NewRetryingClient(
			WithHTTPClient(mhttp),
			WithBaseBackoff(time.Millisecond),
			WithMaxRetries(2),
			WithRetryPolicy(retryNotFound),
		)
		_, err := client.Do(req)
		assert.Error(t, err)
	})

	t.Run("request body is replayed on retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mhttp := mocks.NewMockHTTPClient(ctrl)

		req, err := http.NewRequest(http.MethodPut, "https://sonarr.local/api/v3/series/1", bytes.NewReader([]byte(`{"monitored":false}`)))
		require.NoError(t, err)

		var bodies []string
		mhttp.EXPECT().Do(req).DoAndReturn(func(r *http.Request) (*http.Response, error) {
			b, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(b))
			if len(bodies) == 1 {
				return response(http.StatusServiceUnavailable), nil
			}
			return response(http.StatusOK), nil
		}).Times(2)

		client := NewRetryingClient(WithHTTPClient(mhttp), WithBaseBackoff(time.Millisecond))
		resp, err := client.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{`{"monitored":false}`, `{"monitored":false}`}, bodies)
	})
}
