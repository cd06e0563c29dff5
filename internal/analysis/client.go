// Package analysis provides an HTTP client for the remote analysis service,
// the agent pipeline that reads a user's financial data and writes risk
// assessments and recommendations back to the backing store.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "fincoach/internal/errors"
)

// Client communicates with the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an analysis service client. The base URL should include
// the API prefix, e.g. http://localhost:8000/api.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// TriggerResponse is returned when an analysis run is accepted.
type TriggerResponse struct {
	Status                     string `json:"status"`
	Message                    string `json:"message"`
	UserID                     string `json:"user_id"`
	AnalysisStarted            bool   `json:"analysis_started"`
	EstimatedCompletionMinutes int    `json:"estimated_completion_minutes"`
}

// Status values reported by the service for a run.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AnalysisStatus reports the progress of a run.
type AnalysisStatus struct {
	UserID          string `json:"user_id"`
	Status          string `json:"status"`
	AgentsCompleted int    `json:"agents_completed"`
	TotalAgents     int    `json:"total_agents"`
	LastUpdated     string `json:"last_updated"`
}

// HealthCheck reports the service's own view of its readiness.
type HealthCheck struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Agents    map[string]string `json:"agents,omitempty"`
	Database  string            `json:"database,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// TriggerAnalysis starts an analysis run for the user. The run is
// asynchronous; poll Status or use WaitForCompletion to observe it.
func (c *Client) TriggerAnalysis(ctx context.Context, userID string) (*TriggerResponse, error) {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("triggering analysis: unexpected status %d", resp.StatusCode))
	}

	var result TriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("decoding trigger response: %w", err))
	}
	return &result, nil
}

// Status fetches the progress of the user's current or most recent run.
func (c *Client) Status(ctx context.Context, userID string) (*AnalysisStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+userID, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrAnalysisNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("fetching analysis status: unexpected status %d", resp.StatusCode))
	}

	var result AnalysisStatus
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("decoding status response: %w", err))
	}
	return &result, nil
}

// Health checks whether the analysis service is reachable and ready.
func (c *Client) Health(ctx context.Context) (*HealthCheck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("health check: unexpected status %d", resp.StatusCode))
	}

	var result HealthCheck
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable,
			fmt.Errorf("decoding health response: %w", err))
	}
	return &result, nil
}

// WaitOptions controls WaitForCompletion polling.
type WaitOptions struct {
	// Timeout bounds the whole wait. Zero means 10 minutes.
	Timeout time.Duration
	// PollInterval is the gap between status checks. Zero means 5 seconds.
	PollInterval time.Duration
	// OnProgress, when set, is called after each successful status fetch.
	OnProgress func(AnalysisStatus)
}

// WaitForCompletion polls the run's status until it completes, fails, times
// out, or the context is cancelled. Transient status errors are tolerated;
// polling simply continues on the next tick.
func (c *Client) WaitForCompletion(ctx context.Context, userID string, opts WaitOptions) (*AnalysisStatus, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, userID)
		if err == nil {
			if opts.OnProgress != nil {
				opts.OnProgress(*status)
			}
			switch status.Status {
			case StatusCompleted:
				return status, nil
			case StatusFailed:
				return status, apperrors.ErrAnalysisFailed
			}
		} else if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil, apperrors.ErrAnalysisTimeout
			}
			return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, ctx.Err())
		case <-ticker.C:
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, apperrors.ErrAnalysisTimeout
	}
	return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, ctx.Err())
}
