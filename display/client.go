package display

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlottingClientConfig configures the sidecar plotting service client.
type PlottingClientConfig struct {
	BaseURL       string        `json:"base_url"`
	Timeout       time.Duration `json:"timeout"`
	RetryAttempts uint64        `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
}

// DefaultPlottingClientConfig returns default configuration for a locally
// running plotting service.
func DefaultPlottingClientConfig() PlottingClientConfig {
	return PlottingClientConfig{
		BaseURL:       "http://localhost:8080",
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
	}
}

// PlotResponse is the plotting service's reply to a plot submission.
type PlotResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PlotID  string `json:"plot_id,omitempty"`
	PlotURL string `json:"plot_url,omitempty"`
	ViewURL string `json:"view_url,omitempty"`
}

// PlottingClient submits plot payloads to the sidecar plotting service.
// Transient failures (connection errors, 5xx responses) are retried with
// exponential backoff.
type PlottingClient struct {
	baseURL       string
	httpClient    *http.Client
	retryAttempts uint64
	retryDelay    time.Duration
	logger        *zap.SugaredLogger
}

// NewPlottingClient creates a plotting service client. The logger may be
// nil.
func NewPlottingClient(config PlottingClientConfig, logger *zap.SugaredLogger) *PlottingClient {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultPlottingClientConfig().BaseURL
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultPlottingClientConfig().RetryDelay
	}
	return &PlottingClient{
		baseURL:       config.BaseURL,
		httpClient:    &http.Client{Timeout: config.Timeout},
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		logger:        logger,
	}
}

// SendPlot submits one plot payload, retrying transient failures.
func (pc *PlottingClient) SendPlot(ctx context.Context, plot *PlotData) (*PlotResponse, error) {
	var response *PlotResponse

	b := retry.NewExponential(pc.retryDelay)
	err := retry.Do(ctx, retry.WithMaxRetries(pc.retryAttempts, b), func(ctx context.Context) error {
		resp, err := pc.post(ctx, plot)
		if err != nil {
			pc.logger.Warnf("plot submission failed: %v", err)
			return err
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send plot %q: %w", plot.Title, err)
	}
	return response, nil
}

// SendPlots submits several plot payloads concurrently and returns the
// first error, if any. Every submission gets the same retry treatment as
// SendPlot.
func (pc *PlottingClient) SendPlots(ctx context.Context, plots []*PlotData) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, plot := range plots {
		plot := plot
		eg.Go(func() error {
			_, err := pc.SendPlot(ctx, plot)
			return err
		})
	}
	return eg.Wait()
}

// CheckHealth reports whether the plotting service is reachable.
func (pc *PlottingClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pc.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send health check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plotting service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// post performs one plot submission attempt. Transport errors and 5xx
// responses come back wrapped as retryable; a 4xx status is a permanent
// caller error.
func (pc *PlottingClient) post(ctx context.Context, plot *PlotData) (*PlotResponse, error) {
	payload, err := json.Marshal(plot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plot data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL+"/api/plot", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "metricks-display")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to send HTTP request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, retry.RetryableError(fmt.Errorf("plot request failed with status %d", resp.StatusCode))
	}

	var plotResponse PlotResponse
	if err := json.Unmarshal(body, &plotResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plot request failed with status %d: %s", resp.StatusCode, plotResponse.Message)
	}
	return &plotResponse, nil
}
