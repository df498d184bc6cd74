// Package api is the gateway to the remote reports backend. It exposes the
// four backend endpoints as thin calls with a per-request timeout. Calls are
// never retried and nothing is cached.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
)

// Backend endpoint paths relative to the API base.
const (
	PathHealth  = "/api/health"
	PathReports = "/api/reports"
	PathStats   = "/api/stats"
	PathSubmit  = "/api/submit"
)

// Operation labels used in metrics and error messages.
const (
	opHealth  = "health"
	opReports = "reports"
	opStats   = "stats"
	opSubmit  = "submit"
)

const maxBodyBytes = 10 << 20

// ErrUnexpectedStatus is wrapped by every error caused by a non-2xx response.
var ErrUnexpectedStatus = errors.New("backend API error")

// Client implements the remote data gateway over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a gateway client for baseURL. timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Health returns nil when the backend answers its health endpoint with 2xx.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, opHealth, http.MethodGet, PathHealth, nil)
	return err
}

// CheckReadiness implements the readiness probe by checking backend health.
func (c *Client) CheckReadiness(ctx context.Context) error {
	return c.Health(ctx)
}

// GetReports fetches every stored report. Rows that fail to decode are
// logged and skipped; a body that is not a list is an error.
func (c *Client) GetReports(ctx context.Context) ([]domain.Report, error) {
	body, err := c.do(ctx, opReports, http.MethodGet, PathReports, nil)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(unwrapData(body), &rows); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]domain.Report, 0, len(rows))
	for i, row := range rows {
		var r domain.Report
		if err := json.Unmarshal(row, &r); err != nil {
			c.logger.Warn("skipping malformed report", "index", i, "error", err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// GetStats fetches the backend-computed summary.
func (c *Client) GetStats(ctx context.Context) (domain.Stats, error) {
	body, err := c.do(ctx, opStats, http.MethodGet, PathStats, nil)
	if err != nil {
		return domain.Stats{}, err
	}
	var stats domain.Stats
	if err := json.Unmarshal(unwrapData(body), &stats); err != nil {
		return domain.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

// SubmitReport posts a new report. Any 2xx response counts as accepted.
func (c *Client) SubmitReport(ctx context.Context, s domain.Submission) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	_, err = c.do(ctx, opSubmit, http.MethodPost, PathSubmit, payload)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) (body []byte, err error) {
	start := time.Now()
	defer func() {
		c.observe(op, start, err)
	}()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: status %d: %s", op, ErrUnexpectedStatus, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	c.metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
		c.logger.Debug("backend call failed", "op", op, "error", err)
	}
	c.metrics.GatewayRequests.WithLabelValues(op, outcome).Inc()
}

// unwrapData returns the payload of a {"data": ...} envelope, or body itself
// when the backend answered with the bare value.
func unwrapData(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []byte("null")
	}
	if trimmed[0] != '{' {
		return trimmed
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Data == nil {
		return trimmed
	}
	return envelope.Data
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
