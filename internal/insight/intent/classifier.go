// Package intent classifies a question against the template catalog
// using a hosted zero-shot inference model. Classification is advisory
// only: it annotates the session history and never influences which
// template the selector picks.
package intent

import (
	"bytes"
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"insightbot/internal/common/errors"
	"insightbot/internal/common/logger"
	"insightbot/internal/models"
)

type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	Labels     []string
}

type Classifier struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Classifier {
	return &Classifier{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "intent"}),
	}
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type response struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify posts the question with the catalog ids as candidate labels
// and returns the top label with its confidence. Retries with
// exponential backoff; a context expiry maps to INTENT_API_TIMEOUT.
func (c *Classifier) Classify(ctx context.Context, question string) (*models.IntentAnalysis, error) {
	body, err := json.Marshal(request{
		Inputs:     question,
		Parameters: parameters{CandidateLabels: c.config.Labels},
	})
	if err != nil {
		return nil, errors.NewIntentParsingFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errors.NewIntentAPITimeoutError()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, errors.NewIntentParsingFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.Token)
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			stderrors.Is(lastErr, context.DeadlineExceeded) ||
			stderrors.Is(lastErr, context.Canceled) {
			return nil, errors.NewIntentAPITimeoutError()
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewIntentAPITimeoutError()
		}
		return nil, errors.NewIntentParsingFailedError(lastErr)
	}
	if resp == nil {
		return nil, errors.NewIntentParsingFailedError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var apiResponse response
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewIntentParsingFailedError(fmt.Errorf("decode error: %w", err))
	}

	if len(apiResponse.Labels) == 0 || len(apiResponse.Scores) == 0 {
		return nil, errors.NewIntentParsingFailedError(fmt.Errorf("empty classification result"))
	}

	return &models.IntentAnalysis{
		Label:      apiResponse.Labels[0],
		Confidence: apiResponse.Scores[0],
	}, nil
}
