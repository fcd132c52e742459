package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	"golang.org/x/time/rate"
)

// implements UpstreamFetcher against the sample-data API
type UpstreamClient struct {
	client         *http.Client
	baseURL        string
	apiToken       string
	authHeaderName string
	logger         *logger.Logger
	metrics        *metrics.Metrics
	rateLimiter    *rate.Limiter
}

// creates a new upstream client
func NewUpstreamClient(baseURL, apiToken, authHeaderName string, timeout time.Duration, ratePerSecond int, logger *logger.Logger, metrics *metrics.Metrics) *UpstreamClient {
	return &UpstreamClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:        baseURL,
		apiToken:       apiToken,
		authHeaderName: authHeaderName,
		logger:         logger,
		metrics:        metrics,
		rateLimiter:    rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

// BuildPayload constructs the platform-specific request body. TikTok
// omits reportType entirely: the upstream rejects one of its values
// with a 422, so the field is never sent, not defaulted.
func BuildPayload(cfg *domain.ReportConfig) map[string]any {
	if cfg.Platform == domain.PlatformTikTok {
		return map[string]any{
			"metrics":       cfg.Metrics,
			"dimensions":    []string{"stat_time_day"},
			"level":         cfg.Level,
			"dateRangeEnum": cfg.DateRange,
		}
	}
	return map[string]any{
		"metrics":       cfg.Metrics,
		"level":         cfg.Level,
		"breakdowns":    []string{},
		"timeIncrement": "7",
		"dateRangeEnum": cfg.DateRange,
	}
}

// fetches performance rows for the configured platform
func (c *UpstreamClient) FetchRows(ctx context.Context, cfg *domain.ReportConfig) ([]domain.Row, error) {
	start := time.Now()
	platform := string(cfg.Platform)

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordUpstreamFailure(platform, "rate_limit")
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	payload, err := json.Marshal(BuildPayload(cfg))
	if err != nil {
		c.metrics.RecordUpstreamFailure(platform, "json_marshal")
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/sample-data/%s", c.baseURL, platform)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordUpstreamFailure(platform, "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// Raw token, no "Bearer " prefix. The upstream expects it verbatim.
	req.Header.Set(c.authHeaderName, c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure(platform, "network_error")
		return nil, fmt.Errorf("failed to fetch %s data: %w", platform, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure(platform, "read_body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordUpstreamCall(platform, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, &domain.UpstreamError{
			Platform: cfg.Platform,
			Status:   resp.StatusCode,
			Body:     string(body),
		}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		c.metrics.RecordUpstreamFailure(platform, "json_parse")
		return nil, fmt.Errorf("failed to parse %s response: %w", platform, err)
	}

	rows := domain.ExtractRows(data)

	c.metrics.RecordUpstreamCall(platform, "success", duration)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"url":      url,
		"duration": duration,
		"rows":     len(rows),
	}).Info("Successfully fetched upstream rows")

	return rows, nil
}
