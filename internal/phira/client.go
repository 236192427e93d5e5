// Package phira talks to the phira identity service: user profiles by
// token, chart metadata and play records by id.
package phira

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/udisondev/phira-mp/internal/metrics"
)

// DefaultBaseURL is the public phira API host.
const DefaultBaseURL = "https://phira.5wyxi.com/"

// UserInfo is the subset of the /me response the lobby needs.
type UserInfo struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// ChartInfo is the subset of the /chart/{id} response the lobby needs.
type ChartInfo struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// RecordResult is the subset of the /record/{id} response the lobby
// needs to announce a finished play.
type RecordResult struct {
	Score     int32   `json:"score"`
	Accuracy  float32 `json:"accuracy"`
	FullCombo bool    `json:"full_combo"`
}

// Fetcher is what the session layer needs from the identity service.
// Tests substitute a stub.
type Fetcher interface {
	GetUserInfo(ctx context.Context, token string) (UserInfo, error)
	GetChartInfo(ctx context.Context, chartID int32) (ChartInfo, error)
	GetRecordResult(ctx context.Context, recordID int32) (RecordResult, error)
}

// Client fetches from the phira HTTP API behind a circuit breaker, so a
// dead upstream fails fast instead of stalling every authentication.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
}

// NewClient builds a client for the given base URL. Empty baseURL means
// DefaultBaseURL; timeout <= 0 means 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	st := gobreaker.Settings{
		Name:        "phira",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("identity service circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb:      gobreaker.NewCircuitBreaker(st),
	}
}

// GetUserInfo resolves a session token into a profile. Profiles without
// a language come back as zh-CN.
func (c *Client) GetUserInfo(ctx context.Context, token string) (UserInfo, error) {
	var out UserInfo
	if err := c.getJSON(ctx, "me", "me", token, &out); err != nil {
		return UserInfo{}, fmt.Errorf("fetching user info: %w", err)
	}
	if out.Language == "" {
		out.Language = "zh-CN"
	}
	return out, nil
}

// GetChartInfo resolves a chart id into its metadata.
func (c *Client) GetChartInfo(ctx context.Context, chartID int32) (ChartInfo, error) {
	var out ChartInfo
	if err := c.getJSON(ctx, "chart", fmt.Sprintf("chart/%d", chartID), "", &out); err != nil {
		return ChartInfo{}, fmt.Errorf("fetching chart %d: %w", chartID, err)
	}
	return out, nil
}

// GetRecordResult resolves an uploaded record id into its result.
func (c *Client) GetRecordResult(ctx context.Context, recordID int32) (RecordResult, error) {
	var out RecordResult
	if err := c.getJSON(ctx, "record", fmt.Sprintf("record/%d", recordID), "", &out); err != nil {
		return RecordResult{}, fmt.Errorf("fetching record %d: %w", recordID, err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path, token string, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		metrics.IdentityRequests.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	metrics.IdentityRequests.WithLabelValues(endpoint, "ok").Inc()
	return nil
}
