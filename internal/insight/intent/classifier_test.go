package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"insightbot/internal/common/errors"
	"insightbot/internal/common/logger"
)

func newTestClassifier(t *testing.T, baseURL string, maxRetries int) *Classifier {
	t.Helper()
	return New(&Config{
		BaseURL:    baseURL,
		Token:      "test-token",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Labels:     []string{"top-products", "sales-by-region", "default"},
	}, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func TestClassify_TopLabelWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What are our top products?", req.Inputs)
		assert.Equal(t, []string{"top-products", "sales-by-region", "default"}, req.Parameters.CandidateLabels)

		json.NewEncoder(w).Encode(response{
			Labels: []string{"top-products", "default", "sales-by-region"},
			Scores: []float64{0.87, 0.09, 0.04},
		})
	}))
	defer server.Close()

	c := newTestClassifier(t, server.URL, 0)

	result, err := c.Classify(context.Background(), "What are our top products?")
	require.NoError(t, err)
	assert.Equal(t, "top-products", result.Label)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
}

// Transient server errors are retried; each attempt must carry the full
// request body again.
func TestClassify_RetriesTransientFailures(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "top products", req.Inputs)

		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(response{
			Labels: []string{"top-products"},
			Scores: []float64{0.95},
		})
	}))
	defer server.Close()

	c := newTestClassifier(t, server.URL, 2)

	result, err := c.Classify(context.Background(), "top products")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, "top-products", result.Label)
}

func TestClassify_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClassifier(t, server.URL, 1)

	_, err := c.Classify(context.Background(), "top products")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeIntentParsingFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestClassify_TimeoutMapsToAPITimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	c := New(&Config{
		BaseURL:    server.URL,
		Timeout:    50 * time.Millisecond,
		MaxRetries: 0,
		Labels:     []string{"default"},
	}, logger.NewZapAdapter(zaptest.NewLogger(t)))

	_, err := c.Classify(context.Background(), "anything")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeIntentAPITimeout, stdErr.Code)
}

func TestClassify_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(response{})
	}))
	defer server.Close()

	c := newTestClassifier(t, server.URL, 0)

	_, err := c.Classify(context.Background(), "anything")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeIntentParsingFailed, stdErr.Code)
}
