// Package workflowclient is the out-of-scope HTTP collaborator for the
// window lifecycle: discovering settled-but-unprocessed windows and closing
// a window once settlement completes. cmd/settlementd's bootstrap builds
// one and hands it to internal/gateway, which polls SettledWindows and
// calls CloseWindow as a fallback path for windows nobody ever posts to
// /settle directly; internal/settlement never imports this package.
package workflowclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/settlementhub/nettinghub/pkg/circuit"
)

// Client calls the window-workflow service behind a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

func New(baseURL string, breakerCfg circuit.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	breakerCfg.Name = "workflowclient"
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    circuit.NewBreaker(breakerCfg),
	}
}

// WindowSummary is one entry in the /windows listing.
type WindowSummary struct {
	WindowID int64  `json:"windowId"`
	State    string `json:"state"`
	Currency string `json:"currency"`
}

// SettledWindows lists windows in state SETTLED awaiting payment generation.
func (c *Client) SettledWindows(ctx context.Context) ([]WindowSummary, error) {
	var windows []WindowSummary
	err := c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/windows?state=SETTLED", nil)
		if err != nil {
			return fmt.Errorf("workflowclient: building request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("workflowclient: listing settled windows: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("workflowclient: /windows?state=SETTLED returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&windows)
	})
	return windows, err
}

// CloseWindow marks windowID as PAID once its ISO 20022 file has been
// emitted and handed off.
func (c *Client) CloseWindow(ctx context.Context, windowID int64) error {
	return c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/windows/%d/close", c.baseURL, windowID), nil)
		if err != nil {
			return fmt.Errorf("workflowclient: building request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("workflowclient: closing window %d: %w", windowID, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("workflowclient: closing window %d returned %d", windowID, resp.StatusCode)
		}
		return nil
	})
}

// OpenWindowRequest describes a new collection window to start accumulating
// positions into.
type OpenWindowRequest struct {
	Currency string `json:"currency"`
}

// OpenWindow creates a new window and returns its id.
func (c *Client) OpenWindow(ctx context.Context, currency string) (int64, error) {
	var windowID int64
	err := c.breaker.Execute(ctx, func() error {
		body, err := json.Marshal(OpenWindowRequest{Currency: currency})
		if err != nil {
			return fmt.Errorf("workflowclient: encoding request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/windows",
			bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("workflowclient: building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("workflowclient: opening window: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("workflowclient: opening window returned %d", resp.StatusCode)
		}

		var created WindowSummary
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return fmt.Errorf("workflowclient: decoding open-window response: %w", err)
		}
		windowID = created.WindowID
		return nil
	})
	return windowID, err
}
